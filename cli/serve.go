// ABOUTME: Long-running CLI commands
// ABOUTME: Starts the terminal viewer, the web server or the MCP server on stdio
package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/fichas/handlers"
	"github.com/harperreed/fichas/tui"
	"github.com/harperreed/fichas/web"
)

// BrowseCommand opens the terminal viewer, on id when given.
func (a *App) BrowseCommand(ctx context.Context, id string) error {
	model := tui.NewModel(a.DB, a.Catalog, a.display())
	if id != "" {
		model = model.WithRecord(id)
	}

	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// ServeCommand runs the web UI on addr until ctx is cancelled.
func (a *App) ServeCommand(ctx context.Context, addr string) error {
	srv, err := web.NewServer(a.DB, a.Catalog, a.display(), a.Logger)
	if err != nil {
		return err
	}
	return srv.Start(ctx, addr)
}

// MCPCommand starts the MCP server on stdio.
func (a *App) MCPCommand(ctx context.Context) error {
	// stdout carries the protocol, so nothing else may print there
	a.Logger.Info("starting MCP server", zap.String("version", a.Version))

	server := handlers.NewServer(a.DB, a.Catalog, a.display(), a.Version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
