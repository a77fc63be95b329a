// ABOUTME: Record CLI commands
// ABOUTME: Import JSON documents, list records, show one organized by group and print its history
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

// ImportCommand stores every JSON object in path (a single object or an
// array) in collection, keeping each document's key order.
func (a *App) ImportCommand(ctx context.Context, path, collection string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	docs, err := models.ParseRecords(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	repo := db.NewRecordsRepository(a.DB)
	for _, doc := range docs {
		rec, err := repo.Create(ctx, collection, doc)
		if err != nil {
			return fmt.Errorf("failed to import record: %w", err)
		}
		a.Logger.Debug("imported record", zap.String("id", rec.ID), zap.String("collection", rec.Collection))
	}

	a.ok("Imported %d record(s) from %s", len(docs), path)
	return nil
}

// ListCommand prints records with their title and current group.
func (a *App) ListCommand(ctx context.Context, collection string, limit int) error {
	records, err := db.NewRecordsRepository(a.DB).List(ctx, collection, limit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(a.Out, "No records found")
		return nil
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tCOLLECTION\tGROUP\tID")
	_, _ = fmt.Fprintln(w, "-----\t----------\t-----\t--")
	for _, rec := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.Catalog.Title(rec.Document, rec.ID), rec.Collection, a.groupOf(rec, dir), rec.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(a.Out, "\nTotal: %d record(s)\n", len(records))
	return nil
}

// ShowCommand prints a record's visible groups, with subgroup headings when
// a group has more than one subgroup.
func (a *App) ShowCommand(ctx context.Context, id string) error {
	rec, err := db.NewRecordsRepository(a.DB).Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get record %s: %w", id, err)
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(a.Out, a.heading(a.Catalog.Title(rec.Document, rec.ID)))
	_, _ = fmt.Fprintf(a.Out, "%s %s · %s %s\n", a.label("Collection:"), rec.Collection, a.label("Group:"), a.groupOf(rec, dir))

	for _, g := range a.Catalog.Render(rec.Document) {
		_, _ = fmt.Fprintf(a.Out, "\n%s\n", a.heading("== "+g.Name+" =="))
		for _, sub := range g.Subgroups {
			if len(g.Subgroups) > 1 {
				_, _ = fmt.Fprintf(a.Out, "%s\n", a.heading("-- "+sub.Name))
			}
			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
			for _, f := range sub.Fields {
				label := f.Label + ":"
				if f.Required {
					label = f.Label + " *:"
				}
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", a.label(label), indentLines(f.Value))
			}
			_ = w.Flush()
		}
	}
	return nil
}

// HistoryCommand prints a record's audit trail, newest first.
func (a *App) HistoryCommand(ctx context.Context, id string, limit int) error {
	if _, err := db.NewRecordsRepository(a.DB).Get(ctx, id); err != nil {
		return fmt.Errorf("failed to get record %s: %w", id, err)
	}
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	entries, err := db.NewHistoryRepository(a.DB).Entries(ctx, id, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(a.Out, "No history for this record")
		return nil
	}

	for _, view := range a.synthesizer(dir).Synthesize(entries) {
		_, _ = fmt.Fprintf(a.Out, "[%s] %s\n", view.Icon, view.Narrative)
		meta := view.Actor
		if view.DisplayTimestamp != "" {
			meta += " · " + view.DisplayTimestamp
		}
		_, _ = fmt.Fprintf(a.Out, "    %s\n", a.label(meta))
	}
	return nil
}

func (a *App) groupOf(rec *db.StoredRecord, dir provenance.Directory) string {
	if id := rec.Document.String(models.EntryFieldGroupID); id != "" {
		return dir.GroupName(id)
	}
	return a.display().DefaultGroup
}

// indentLines keeps multi-line values aligned under the value column.
func indentLines(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  \t")
}
