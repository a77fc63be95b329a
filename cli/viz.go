// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the dashboard and group-flow graph generation commands
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/viz"
)

// GraphCommand writes the group-flow DOT graph of a record to output, or to
// stdout when output is empty.
func (a *App) GraphCommand(ctx context.Context, id, output string) error {
	rec, err := db.NewRecordsRepository(a.DB).Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get record %s: %w", id, err)
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	entries, err := db.NewHistoryRepository(a.DB).Entries(ctx, id, 0)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	generator := viz.NewGraphGenerator(a.synthesizer(dir), dir)
	dot, err := generator.GenerateGroupFlow(ctx, a.Catalog.Title(rec.Document, rec.ID), viz.Chronological(entries))
	if err != nil {
		return err
	}

	if output != "" {
		return os.WriteFile(output, []byte(dot), 0644)
	}

	_, _ = fmt.Fprintln(a.Out, dot)
	return nil
}

func (a *App) DashboardCommand(ctx context.Context) error {
	stats, err := viz.GenerateDashboardStats(ctx, a.DB, a.display())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	_, _ = fmt.Fprint(a.Out, viz.RenderDashboard(stats))
	return nil
}
