// ABOUTME: Record operations that change state and log history in one step
// ABOUTME: Group moves, sharing and permission changes each append one entry
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fichas/models"
)

var (
	ErrNoGroupChange = errors.New("record is already in that group")
	ErrInvalidShare  = errors.New("share target is required")
)

// AssignGroup moves a record to groupID and logs a group-change entry. An
// empty groupID removes the record from its current group.
func AssignGroup(ctx context.Context, db *sql.DB, recordID, groupID, actor string) (models.Record, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	rec, err := scanRecord(tx.QueryRowContext(ctx, `
		SELECT id, collection, document, created_at, updated_at
		FROM records WHERE id = ?
	`, recordID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		return models.Record{}, err
	}

	groupID = strings.TrimSpace(groupID)
	previous := rec.Document.String(models.EntryFieldGroupID)
	if previous == groupID {
		return models.Record{}, ErrNoGroupChange
	}

	doc := rec.Document.Without(models.EntryFieldGroupID)
	if groupID != "" {
		doc = doc.With(models.EntryFieldGroupID, groupID)
	}
	if err := updateDocument(ctx, tx, recordID, doc); err != nil {
		return models.Record{}, err
	}

	var fields []models.Field
	if previous != "" {
		fields = append(fields, models.Field{Key: models.EntryFieldPreviousGroupID, Value: previous})
	}
	if groupID != "" {
		fields = append(fields, models.Field{Key: models.EntryFieldGroupID, Value: groupID})
	}
	fields = appendActor(fields, actor)

	entry, err := appendEntry(ctx, tx, recordID, models.NewRecord(fields...), time.Now().UTC())
	if err != nil {
		return models.Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Record{}, fmt.Errorf("failed to commit group change: %w", err)
	}
	return entry, nil
}

// ShareRecord logs that a record was shared. Permission may be empty.
func ShareRecord(ctx context.Context, db *sql.DB, recordID, sharedWith, permission, actor string) (models.Record, error) {
	sharedWith = strings.TrimSpace(sharedWith)
	if sharedWith == "" {
		return models.Record{}, ErrInvalidShare
	}
	if err := recordExists(ctx, db, recordID); err != nil {
		return models.Record{}, err
	}

	now := time.Now().UTC()
	fields := []models.Field{{Key: models.EntryFieldSharedWith, Value: sharedWith}}
	if permission != "" {
		fields = append(fields, models.Field{Key: models.EntryFieldPermission, Value: permission})
	}
	fields = appendActor(fields, actor)
	fields = append(fields, models.Field{Key: models.EntryFieldSharedAt, Value: models.TimestampOf(now)})

	return appendEntry(ctx, db, recordID, models.NewRecord(fields...), now)
}

// SetPermission logs a permission change on a record.
func SetPermission(ctx context.Context, db *sql.DB, recordID, permission, actor string) (models.Record, error) {
	if err := recordExists(ctx, db, recordID); err != nil {
		return models.Record{}, err
	}

	fields := []models.Field{{Key: models.EntryFieldAction, Value: string(models.ActionPermission)}}
	if permission != "" {
		fields = append(fields, models.Field{Key: models.EntryFieldPermission, Value: permission})
	}
	fields = appendActor(fields, actor)

	return appendEntry(ctx, db, recordID, models.NewRecord(fields...), time.Now().UTC())
}

func appendActor(fields []models.Field, actor string) []models.Field {
	if actor = strings.TrimSpace(actor); actor != "" {
		fields = append(fields, models.Field{Key: models.EntryFieldUserName, Value: actor})
	}
	return fields
}

func recordExists(ctx context.Context, db *sql.DB, recordID string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM records WHERE id = ?`, recordID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	return err
}
