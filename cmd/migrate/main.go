// ABOUTME: One-shot migration of records, history and groups from MongoDB into SQLite.
// ABOUTME: Provides dry-run and backup capabilities for safe migration.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/logging"
	"github.com/harperreed/fichas/mongo"
)

type options struct {
	configPath  string
	dbPath      string
	mongoURI    string
	mongoDB     string
	collections []string
	limit       int64
	dryRun      bool
	backup      bool
	indexes     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Copy MongoDB records and their history into the fichas SQLite store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/fichas/config.yaml)")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database path (default: from config)")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (default: from config)")
	f.StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database name (default: from config)")
	f.StringSliceVar(&opts.collections, "collection", nil, "Collection to copy (repeatable, required)")
	f.Int64Var(&opts.limit, "limit", 0, "Maximum records per collection (0 for all)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Show what would happen without making changes")
	f.BoolVar(&opts.backup, "backup", true, "Create backup before migration")
	f.BoolVar(&opts.indexes, "ensure-indexes", false, "Create the history lookup index in MongoDB first")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

func run(ctx context.Context, opts options) error {
	_ = godotenv.Load()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.Storage.Path = opts.dbPath
	}
	if opts.mongoURI != "" {
		cfg.Mongo.URI = opts.mongoURI
	}
	if opts.mongoDB != "" {
		cfg.Mongo.Database = opts.mongoDB
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPath := cfg.Storage.DatabasePath()
	if opts.backup && !opts.dryRun {
		if err := backupDatabase(dbPath, time.Now(), logger); err != nil {
			return err
		}
	}

	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	src, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer func() { _ = src.Close(context.Background()) }()

	stats, err := mongo.Migrate(ctx, src, database, mongo.MigrateOptions{
		Collections:   opts.collections,
		Limit:         opts.limit,
		DryRun:        opts.dryRun,
		EnsureIndexes: opts.indexes,
	}, logger)
	if err != nil {
		return err
	}

	prefix := ""
	if opts.dryRun {
		prefix = "[DRY RUN] "
	}
	logger.Info(prefix+"migration completed",
		zap.String("database", dbPath),
		zap.Int("groups", stats.Groups),
		zap.Int("records", stats.Records),
		zap.Int("entries", stats.Entries),
		zap.Int("skipped", stats.Skipped))
	return nil
}

// backupDatabase copies an existing database file next to itself. A missing
// file needs no backup.
func backupDatabase(dbPath string, now time.Time, logger *zap.Logger) error {
	input, err := os.ReadFile(dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", dbPath, now.Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0644); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", zap.String("path", backupPath))
	return nil
}
