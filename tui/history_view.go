// ABOUTME: Audit history pane for the open record
// ABOUTME: One line per entry with badge, narrative, actor and time
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var badgeColors = map[string]lipgloss.Color{
	"accent":  lipgloss.Color("170"),
	"primary": lipgloss.Color("39"),
	"warn":    lipgloss.Color("214"),
}

var icons = map[string]string{
	"swap":     "⇄",
	"share":    "↗",
	"security": "🔒",
	"history":  "•",
}

func (m Model) renderHistoryView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("HISTORY: " + m.recordTitle(m.current)))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(strings.Join([]string{"↑/↓: Scroll", "Esc: Back", "q: Quit"}, " • ")))

	return s.String()
}

func (m Model) renderAuditContent() string {
	if len(m.audit) == 0 {
		return "No history for this record.\n"
	}

	var s strings.Builder
	for _, v := range m.audit {
		icon, ok := icons[v.Icon]
		if !ok {
			icon = v.Icon
		}
		style := lipgloss.NewStyle()
		if c, ok := badgeColors[v.Color]; ok {
			style = style.Foreground(c)
		}

		s.WriteString(fmt.Sprintf("%s %s\n", style.Render(icon), v.Narrative))
		meta := v.Actor
		if v.DisplayTimestamp != "" {
			meta += " · " + v.DisplayTimestamp
		}
		s.WriteString(helpStyle.UnsetMarginTop().Render("   "+meta) + "\n")
	}
	return s.String()
}

func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewDetail
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
