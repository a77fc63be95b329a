// ABOUTME: CLI commands that change records and groups
// ABOUTME: Each change prints the same narrative the history view shows
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

// MoveCommand assigns a record to groupID; an empty groupID removes it from
// its group.
func (a *App) MoveCommand(ctx context.Context, id, groupID, actor string) error {
	entry, err := db.AssignGroup(ctx, a.DB, id, groupID, actor)
	if err != nil {
		return fmt.Errorf("failed to move record: %w", err)
	}
	return a.printEntry(ctx, entry)
}

// ShareCommand logs that a record was shared.
func (a *App) ShareCommand(ctx context.Context, id, with, permission, actor string) error {
	entry, err := db.ShareRecord(ctx, a.DB, id, with, permission, actor)
	if err != nil {
		return fmt.Errorf("failed to share record: %w", err)
	}
	return a.printEntry(ctx, entry)
}

// PermissionCommand logs a permission change.
func (a *App) PermissionCommand(ctx context.Context, id, permission, actor string) error {
	entry, err := db.SetPermission(ctx, a.DB, id, permission, actor)
	if err != nil {
		return fmt.Errorf("failed to change permission: %w", err)
	}
	return a.printEntry(ctx, entry)
}

// GroupAddCommand creates or renames a group.
func (a *App) GroupAddCommand(ctx context.Context, id, name string) error {
	group, err := db.NewGroupsRepository(a.DB).Upsert(ctx, id, name)
	if err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}
	a.ok("Group saved: %s (ID: %s)", group.Name, group.ID)
	return nil
}

func (a *App) GroupListCommand(ctx context.Context) error {
	groups, err := db.NewGroupsRepository(a.DB).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(a.Out, "No groups found")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID")
	_, _ = fmt.Fprintln(w, "----\t--")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", g.Name, g.ID)
	}
	return w.Flush()
}

func (a *App) printEntry(ctx context.Context, entry models.Record) error {
	dir, err := a.directory(ctx)
	if err != nil {
		return err
	}
	view := a.synthesizer(dir).View(provenance.ParseEntry(entry))
	a.ok("%s", view.Narrative)
	_, _ = fmt.Fprintf(a.Out, "  %s %s\n", a.label("By:"), view.Actor)
	return nil
}
