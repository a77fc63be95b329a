// ABOUTME: Shared dependencies for CLI commands
// ABOUTME: Holds the database, presentation engines, logger and output styling
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/provenance"
)

// App is what every command needs. Build it once per invocation.
type App struct {
	DB      *sql.DB
	Config  *config.Config
	Catalog *catalog.Catalog
	Logger  *zap.Logger
	Out     io.Writer
	Version string

	styled bool
}

// NewApp wires the catalog from cfg, loading the field layout file when one
// is configured. Output goes to stdout, styled only on a terminal.
func NewApp(database *sql.DB, cfg *config.Config, logger *zap.Logger, version string) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var layout catalog.Layout
	if cfg.Display.LayoutPath != "" {
		var err error
		layout, err = catalog.LoadLayout(cfg.Display.LayoutPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load field layout: %w", err)
		}
		logger.Debug("loaded field layout", zap.String("path", cfg.Display.LayoutPath), zap.Int("fields", len(layout)))
	}

	return &App{
		DB:      database,
		Config:  cfg,
		Catalog: catalog.New(&cfg.Display, nil, layout),
		Logger:  logger,
		Out:     os.Stdout,
		Version: version,
		styled:  term.IsTerminal(int(os.Stdout.Fd())),
	}, nil
}

func (a *App) display() *config.DisplayConfig {
	return &a.Config.Display
}

func (a *App) synthesizer(dir provenance.Directory) *provenance.Synthesizer {
	return provenance.New(a.display(), a.Catalog.Formatter(), dir)
}

func (a *App) directory(ctx context.Context) (provenance.Directory, error) {
	return db.NewGroupsRepository(a.DB).Directory(ctx)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func (a *App) heading(s string) string {
	if !a.styled {
		return s
	}
	return headingStyle.Render(s)
}

func (a *App) label(s string) string {
	if !a.styled {
		return s
	}
	return labelStyle.Render(s)
}

func (a *App) ok(format string, args ...any) {
	msg := "✓ " + fmt.Sprintf(format, args...)
	if a.styled {
		msg = okStyle.Render(msg)
	}
	_, _ = fmt.Fprintln(a.Out, msg)
}
