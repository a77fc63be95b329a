// ABOUTME: Record detail pane with group tabs and labeled values
// ABOUTME: Hides groups whose fields are all empty

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(24)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	subgroupStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.recordTitle(m.current)))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderGroupTabs())
	s.WriteString("\n\n")

	s.WriteString(m.viewport.View())
	s.WriteString("\n")

	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderGroupTabs() string {
	if len(m.visible) == 0 {
		return tabInactiveStyle.Render("(empty record)")
	}

	var rendered []string
	for i, g := range m.visible {
		if i == m.activeTab {
			rendered = append(rendered, tabActiveStyle.Render(g.Name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(g.Name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderGroupContent lists the active group's fields by subgroup. Subgroup
// headings are shown only when the group has more than one.
func (m Model) renderGroupContent() string {
	if m.current == nil || m.activeTab >= len(m.visible) {
		return ""
	}

	group := m.visible[m.activeTab]
	var s strings.Builder
	for i, sub := range group.Subgroups {
		if len(group.Subgroups) > 1 {
			if i > 0 {
				s.WriteString("\n")
			}
			s.WriteString(subgroupStyle.Render(sub.Name))
			s.WriteString("\n")
		}
		for _, d := range sub.Fields {
			s.WriteString(m.renderField(d.Label, m.catalog.GetDisplayString(d, m.current.Document)))
		}
	}
	return s.String()
}

func (m Model) renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Tab/←/→: Group",
		"↑/↓: Scroll",
		"a: History",
		"g: Graph",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		return m, m.loadRecords()
	case "tab", "right", "l":
		if len(m.visible) > 0 {
			m.activeTab = (m.activeTab + 1) % len(m.visible)
			m.refreshViewport()
		}
		return m, nil
	case "shift+tab", "left", "h":
		if len(m.visible) > 0 {
			m.activeTab = (m.activeTab - 1 + len(m.visible)) % len(m.visible)
			m.refreshViewport()
		}
		return m, nil
	case "a":
		m.viewMode = ViewHistory
		m.refreshViewport()
		return m, nil
	case "g":
		if err := m.generateGraph(); err != nil {
			m.err = err
			return m, nil
		}
		m.viewMode = ViewGraph
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
