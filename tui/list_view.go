// ABOUTME: Record list pane backed by a bubbles table
// ABOUTME: Handles selection and navigation into a record

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/fichas/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("FICHAS"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n\n")
	}

	if len(m.list) == 0 {
		s.WriteString("No records yet. Import some with: fichas import <file>\n")
	} else {
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Collection", Width: 16},
		{Title: "Group", Width: 20},
		{Title: "ID", Width: 36},
	}

	var rows []table.Row
	for _, rec := range m.list {
		group := m.display.DefaultGroup
		if id := rec.Document.String(models.EntryFieldGroupID); id != "" {
			group = m.dir.GroupName(id)
		}
		rows = append(rows, table.Row{
			m.recordTitle(rec),
			rec.Collection,
			group,
			rec.ID,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Open",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.list)-1 {
			m.selectedRow++
		}
	case "enter":
		if m.selectedRow < len(m.list) {
			return m, m.loadRecord(m.list[m.selectedRow].ID)
		}
	case "r":
		return m, m.loadRecords()
	}

	return m, nil
}
