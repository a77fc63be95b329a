// ABOUTME: Entry point for the fichas CLI, web UI and MCP server
// ABOUTME: Loads .env and config, opens the database, then routes to a subcommand
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/fichas/cli"
	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/logging"
)

const version = "0.2.0"

var (
	dbPath     string
	configPath string
	verbose    bool

	logger   *zap.Logger
	database *sql.DB
	app      *cli.App
)

var rootCmd = &cobra.Command{
	Use:   "fichas",
	Short: "Schema-less records with grouped views and an audit trail",
	Long: `fichas stores free-form records, shows them organized into labeled
groups, and keeps a readable history of group moves, sharing and permission
changes.

Records can be browsed in the terminal, served as web pages, or exposed to
agents over MCP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine
		_ = godotenv.Load()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if dbPath != "" {
			cfg.Storage.Path = dbPath
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := cfg.Storage.DatabasePath()
		database, err = db.OpenDatabase(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("opened database", zap.String("path", path))

		app, err = cli.NewApp(database, cfg, logger, version)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			_ = database.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/fichas/fichas.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/fichas/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	addCommands(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
