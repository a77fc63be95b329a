// ABOUTME: pull-mongo CLI command
// ABOUTME: Copies records, history and groups from the configured MongoDB into the local store
package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harperreed/fichas/mongo"
)

// PullMongoCommand connects with the configured mongo settings and copies
// collections into the local database.
func (a *App) PullMongoCommand(ctx context.Context, collections []string, limit int64, dryRun, ensureIndexes bool) error {
	if len(collections) == 0 {
		return fmt.Errorf("at least one --collection is required")
	}

	src, err := mongo.Connect(ctx, a.Config.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() {
		if err := src.Close(context.Background()); err != nil {
			a.Logger.Warn("failed to close mongo client", zap.Error(err))
		}
	}()

	return a.pull(ctx, src, mongo.MigrateOptions{
		Collections:   collections,
		Limit:         limit,
		DryRun:        dryRun,
		EnsureIndexes: ensureIndexes,
	})
}

func (a *App) pull(ctx context.Context, src mongo.DocumentSource, opts mongo.MigrateOptions) error {
	stats, err := mongo.Migrate(ctx, src, a.DB, opts, a.Logger)
	if err != nil {
		return err
	}

	prefix := "Copied"
	if opts.DryRun {
		prefix = "Would copy"
	}
	a.ok("%s %d record(s), %d history entries and %d group(s); skipped %d",
		prefix, stats.Records, stats.Entries, stats.Groups, stats.Skipped)
	return nil
}
