// ABOUTME: Read-only MongoDB source of records, history entries and groups
// ABOUTME: Every document is normalized before it reaches the engine
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrMissingURI = errors.New("mongo uri is not configured")
)

type Source struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.MongoConfig
}

var (
	_ DocumentSource = (*Source)(nil)
	_ Indexer        = (*Source)(nil)
)

// Connect opens a client and pings the primary within cfg.Timeout.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Source, error) {
	if cfg.URI == "" {
		return nil, ErrMissingURI
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Source{client: client, db: client.Database(cfg.Database), cfg: cfg}, nil
}

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Record fetches one document by id. Hex ids match both ObjectID and
// string _id values.
func (s *Source) Record(ctx context.Context, collection, id string) (models.Record, error) {
	var doc bson.D
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Record{}, ErrNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to fetch record: %w", err)
	}
	return DocumentToRecord(doc), nil
}

// Records lists documents of a collection in natural order. A non-positive
// limit returns everything.
func (s *Source) Records(ctx context.Context, collection string, limit int64) ([]models.Record, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, collection, bson.M{}, opts)
}

// History lists a record's entries newest first.
func (s *Source) History(ctx context.Context, recordID string, limit int64) ([]models.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: models.EntryFieldTimestamp, Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, s.cfg.HistoryCollection, bson.M{models.EntryFieldRecordID: recordID}, opts)
}

// Groups returns the group directory. Documents carry their display name
// in "name" or "nome".
func (s *Source) Groups(ctx context.Context) (provenance.Directory, error) {
	docs, err := s.find(ctx, s.cfg.GroupsCollection, bson.M{}, options.Find())
	if err != nil {
		return nil, err
	}

	dir := make(provenance.Directory, len(docs))
	for _, doc := range docs {
		id := doc.String(models.EntryFieldID)
		if id == "" {
			continue
		}
		name := doc.String("name")
		if name == "" {
			name = doc.String("nome")
		}
		dir[id] = name
	}
	return dir, nil
}

// EnsureIndexes creates the history lookup index.
func (s *Source) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(s.cfg.HistoryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: models.EntryFieldRecordID, Value: 1}, {Key: models.EntryFieldTimestamp, Value: -1}},
		Options: options.Index().SetName("record_timestamp"),
	})
	return err
}

func (s *Source) find(ctx context.Context, collection string, filter any, opts *options.FindOptions) ([]models.Record, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var out []models.Record
	for cur.Next(ctx) {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		out = append(out, DocumentToRecord(doc))
	}
	return out, cur.Err()
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}
