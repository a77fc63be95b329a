// ABOUTME: Repository for schema-less records stored as JSON documents
// ABOUTME: Keeps each document's key order and its id field in sync with the row id
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/fichas/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
)

// DefaultCollection is used when a record is created without a collection.
const DefaultCollection = "records"

// StoredRecord is a record row.
type StoredRecord struct {
	ID         string
	Collection string
	Document   models.Record
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordsRepository provides CRUD operations for records.
type RecordsRepository struct {
	db *sql.DB
}

// NewRecordsRepository creates a new records repository.
func NewRecordsRepository(db *sql.DB) *RecordsRepository {
	return &RecordsRepository{db: db}
}

// Create stores doc. The id comes from the document's "id" string field or
// is generated, and is written back into the document as its first key.
func (r *RecordsRepository) Create(ctx context.Context, collection string, doc models.Record) (*StoredRecord, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	id := doc.String(models.EntryFieldID)
	if id == "" {
		id = uuid.New().String()
	}
	doc = withID(doc, id)

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records (id, collection, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, collection, string(data), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return &StoredRecord{ID: id, Collection: collection, Document: doc, CreatedAt: now, UpdatedAt: now}, nil
}

// Get retrieves a record by ID.
func (r *RecordsRepository) Get(ctx context.Context, id string) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, collection, document, created_at, updated_at
		FROM records
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records newest first. An empty collection lists all, and a
// non-positive limit means no limit.
func (r *RecordsRepository) List(ctx context.Context, collection string, limit int) ([]*StoredRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, collection, document, created_at, updated_at
		FROM records
		WHERE (? = '' OR collection = ?)
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, collection, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*StoredRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Update replaces the document of an existing record.
func (r *RecordsRepository) Update(ctx context.Context, id string, doc models.Record) error {
	if id == "" {
		return ErrInvalidRecord
	}
	return updateDocument(ctx, r.db, id, withID(doc, id))
}

// Delete removes a record and its history.
func (r *RecordsRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*StoredRecord, error) {
	var rec StoredRecord
	var document string
	if err := row.Scan(&rec.ID, &rec.Collection, &document, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(document), &rec.Document); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func updateDocument(ctx context.Context, ex execer, id string, doc models.Record) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	result, err := ex.ExecContext(ctx, `
		UPDATE records SET document = ?, updated_at = ? WHERE id = ?
	`, string(data), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// withID puts id first, replacing any existing id field.
func withID(doc models.Record, id string) models.Record {
	fields := []models.Field{{Key: models.EntryFieldID, Value: id}}
	for _, f := range doc.Fields() {
		if f.Key != models.EntryFieldID {
			fields = append(fields, f)
		}
	}
	return models.NewRecord(fields...)
}
