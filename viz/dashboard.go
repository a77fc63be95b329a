// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Shows records per group, history by action type and recent activity
package viz

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/format"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

const recentActivityLimit = 5

type DashboardStats struct {
	TotalRecords int

	// Ordered by count, largest first
	RecordsByGroup []GroupCount

	ActionCounts map[models.ActionType]int

	// Newest first
	RecentActivity []models.AuditViewModel
}

type GroupCount struct {
	Name  string
	Count int
}

func GenerateDashboardStats(ctx context.Context, database *sql.DB, display *config.DisplayConfig) (*DashboardStats, error) {
	if display == nil {
		display = config.DefaultDisplay()
	}

	records, err := db.NewRecordsRepository(database).List(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	dir, err := db.NewGroupsRepository(database).Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}

	stats := &DashboardStats{
		TotalRecords: len(records),
		ActionCounts: make(map[models.ActionType]int),
	}

	counts := make(map[string]int)
	for _, rec := range records {
		name := display.DefaultGroup
		if id := rec.Document.String(models.EntryFieldGroupID); id != "" {
			name = dir.GroupName(id)
		}
		counts[name]++
	}
	for name, n := range counts {
		stats.RecordsByGroup = append(stats.RecordsByGroup, GroupCount{Name: name, Count: n})
	}
	sort.Slice(stats.RecordsByGroup, func(i, j int) bool {
		a, b := stats.RecordsByGroup[i], stats.RecordsByGroup[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	docs, err := db.NewHistoryRepository(database).Recent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	entries := provenance.ParseEntries(docs)
	for _, e := range entries {
		stats.ActionCounts[provenance.Classify(e)]++
	}

	if len(entries) > recentActivityLimit {
		entries = entries[:recentActivityLimit]
	}
	synth := provenance.New(display, format.New(display), dir)
	stats.RecentActivity = synth.Synthesize(entries)

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  FICHAS DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("RECORDS BY GROUP\n")
	renderGroups(&out, stats.RecordsByGroup)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d records  🔀 %d moves  🔗 %d shares  🔒 %d permission changes\n\n",
		stats.TotalRecords,
		stats.ActionCounts[models.ActionGroupChange],
		stats.ActionCounts[models.ActionSharing],
		stats.ActionCounts[models.ActionPermission]))

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, v := range stats.RecentActivity {
			out.WriteString(fmt.Sprintf("  %-8s %s (%s)", v.Icon, v.Narrative, v.Actor))
			if v.DisplayTimestamp != "" {
				out.WriteString(" " + v.DisplayTimestamp)
			}
			out.WriteString("\n")
		}
	}

	return out.String()
}

func renderGroups(out *strings.Builder, groups []GroupCount) {
	maxCount := 0
	for _, g := range groups {
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, g := range groups {
		// Calculate bar length (0-10 blocks)
		barLength := (g.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-16s %s  %2d\n", g.Name, bar, g.Count))
	}
}
