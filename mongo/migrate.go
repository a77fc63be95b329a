// ABOUTME: Copies records, their history and the group directory into the SQLite store
// ABOUTME: Shared by the pull-mongo subcommand and the migrate tool
package mongo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

// DocumentSource is the read side of a migration. *Source implements it.
type DocumentSource interface {
	Records(ctx context.Context, collection string, limit int64) ([]models.Record, error)
	History(ctx context.Context, recordID string, limit int64) ([]models.Record, error)
	Groups(ctx context.Context) (provenance.Directory, error)
}

// Indexer is implemented by sources that can prepare their history lookup
// index before a migration reads from them.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

type MigrateOptions struct {
	Collections []string
	// Limit caps records per collection; non-positive copies everything.
	Limit  int64
	DryRun bool
	// EnsureIndexes asks an Indexer source to create its history index
	// first. Ignored on dry runs.
	EnsureIndexes bool
}

type MigrateStats struct {
	Groups  int
	Records int
	Entries int
	Skipped int
}

// Migrate copies groups, then each collection's records with their history.
// Records whose id already exists locally are skipped together with their
// history, so a migration can be re-run after a partial failure.
func Migrate(ctx context.Context, src DocumentSource, dst *sql.DB, opts MigrateOptions, logger *zap.Logger) (MigrateStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var stats MigrateStats

	if opts.EnsureIndexes && !opts.DryRun {
		if ix, ok := src.(Indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return stats, fmt.Errorf("failed to create source indexes: %w", err)
			}
			logger.Info("source indexes ready")
		}
	}

	dir, err := src.Groups(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read groups: %w", err)
	}
	ids := make([]string, 0, len(dir))
	for id := range dir {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := db.NewGroupsRepository(dst)
	for _, id := range ids {
		name := dir[id]
		if name == "" {
			name = id
		}
		if !opts.DryRun {
			if _, err := groups.Upsert(ctx, id, name); err != nil {
				return stats, fmt.Errorf("failed to copy group %s: %w", id, err)
			}
		}
		stats.Groups++
	}

	records := db.NewRecordsRepository(dst)
	history := db.NewHistoryRepository(dst)
	for _, collection := range opts.Collections {
		docs, err := src.Records(ctx, collection, opts.Limit)
		if err != nil {
			return stats, fmt.Errorf("failed to read %s: %w", collection, err)
		}
		logger.Info("copying collection", zap.String("collection", collection), zap.Int("records", len(docs)))

		for _, doc := range docs {
			id := doc.String(models.EntryFieldID)
			if id == "" {
				logger.Warn("skipping record without id", zap.String("collection", collection))
				stats.Skipped++
				continue
			}

			_, err := records.Get(ctx, id)
			if err == nil {
				logger.Debug("record already present", zap.String("id", id))
				stats.Skipped++
				continue
			}
			if !errors.Is(err, db.ErrRecordNotFound) {
				return stats, err
			}

			entries, err := src.History(ctx, id, 0)
			if err != nil {
				return stats, fmt.Errorf("failed to read history of %s: %w", id, err)
			}

			stats.Records++
			stats.Entries += len(entries)
			if opts.DryRun {
				continue
			}

			if _, err := records.Create(ctx, collection, Portable(doc)); err != nil {
				return stats, fmt.Errorf("failed to copy record %s: %w", id, err)
			}
			// Source history is newest first; local ids grow with insertion.
			for i := len(entries) - 1; i >= 0; i-- {
				if _, err := history.Append(ctx, id, sourceEntry(entries[i])); err != nil {
					return stats, fmt.Errorf("failed to copy history of %s: %w", id, err)
				}
			}
		}
	}

	return stats, nil
}

// sourceEntry keeps the document's original id under sourceId since the
// local store assigns its own.
func sourceEntry(doc models.Record) models.Record {
	entry := Portable(doc)
	if id := entry.String(models.EntryFieldID); id != "" {
		entry = entry.Without(models.EntryFieldID).With("sourceId", id)
	}
	return entry
}
