// ABOUTME: Group-flow graph pane for the record viewer
// ABOUTME: Shows the DOT source of a record's group moves

package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/fichas/provenance"
	"github.com/harperreed/fichas/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("GROUP FLOW"))
	s.WriteString("\n")

	if m.graphDOT == "" {
		s.WriteString("Generating graph...\n")
	} else {
		s.WriteString(m.viewport.View())
	}

	s.WriteString("\n")
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"↑/↓: Scroll",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewDetail
		m.graphDOT = ""
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) generateGraph() error {
	synth := provenance.New(m.display, m.catalog.Formatter(), m.dir)
	generator := viz.NewGraphGenerator(synth, m.dir)

	dot, err := generator.GenerateGroupFlow(context.Background(), m.recordTitle(m.current), viz.Chronological(m.entries))
	if err != nil {
		return err
	}

	m.graphDOT = dot
	return nil
}
