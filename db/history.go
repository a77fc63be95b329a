// ABOUTME: Append-only history log of record events
// ABOUTME: Entries get ULID ids so lexical order is insertion order
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newEntryID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// HistoryRepository appends and lists history entries.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores an entry for recordID and returns the stored document. The
// entry gets a fresh id, the record id, and a timestamp unless it has one.
func (r *HistoryRepository) Append(ctx context.Context, recordID string, entry models.Record) (models.Record, error) {
	return appendEntry(ctx, r.db, recordID, entry, time.Now().UTC())
}

// ListByRecord returns raw entries newest first. A non-positive limit means
// no limit.
func (r *HistoryRepository) ListByRecord(ctx context.Context, recordID string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT entry FROM history_entries
		WHERE record_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.Record, error) {
	entries := make([]models.Record, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var doc models.Record
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, doc)
	}

	return entries, rows.Err()
}

// Recent returns entries across all records, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT entry FROM history_entries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Entries returns typed entries newest first.
func (r *HistoryRepository) Entries(ctx context.Context, recordID string, limit int) ([]models.HistoryEntry, error) {
	docs, err := r.ListByRecord(ctx, recordID, limit)
	if err != nil {
		return nil, err
	}
	return provenance.ParseEntries(docs), nil
}

func appendEntry(ctx context.Context, ex execer, recordID string, entry models.Record, now time.Time) (models.Record, error) {
	id := newEntryID(now)

	fields := []models.Field{
		{Key: models.EntryFieldID, Value: id},
		{Key: models.EntryFieldRecordID, Value: recordID},
	}
	for _, f := range entry.Fields() {
		if f.Key != models.EntryFieldID && f.Key != models.EntryFieldRecordID {
			fields = append(fields, f)
		}
	}
	doc := models.NewRecord(fields...)
	if !hasTime(doc) {
		doc = doc.With(models.EntryFieldTimestamp, models.TimestampOf(now))
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to encode history entry: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO history_entries (id, record_id, entry, created_at)
		VALUES (?, ?, ?, ?)
	`, id, recordID, string(data), now)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return doc, nil
}

func hasTime(doc models.Record) bool {
	for _, key := range []string{models.EntryFieldTimestamp, models.EntryFieldSharedAt} {
		if v, ok := doc.Get(key); ok && !models.ValueOf(v).IsEmpty() {
			return true
		}
	}
	return false
}
