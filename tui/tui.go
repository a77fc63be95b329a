// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Browses records by group tab with their audit history and group-flow graph
package tui

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewHistory
	ViewGraph
)

const listLimit = 500

// Model is the main bubbletea model
type Model struct {
	records *db.RecordsRepository
	history *db.HistoryRepository
	groups  *db.GroupsRepository
	catalog *catalog.Catalog
	display *config.DisplayConfig

	viewMode ViewMode

	// List view state
	list        []*db.StoredRecord
	selectedRow int
	openID      string

	// Detail view state
	current   *db.StoredRecord
	visible   []models.Group
	activeTab int

	// History and graph state
	entries  []models.HistoryEntry
	audit    []models.AuditViewModel
	dir      provenance.Directory
	graphDOT string

	viewport viewport.Model

	// UI state
	width  int
	height int
	err    error
}

type recordsLoadedMsg struct {
	records []*db.StoredRecord
	dir     provenance.Directory
}

type recordLoadedMsg struct {
	record  *db.StoredRecord
	entries []models.HistoryEntry
	dir     provenance.Directory
}

type errMsg struct {
	err error
}

// NewModel creates a new TUI model. A nil catalog or display config uses defaults.
func NewModel(database *sql.DB, cat *catalog.Catalog, display *config.DisplayConfig) Model {
	if display == nil {
		display = config.DefaultDisplay()
	}
	if cat == nil {
		cat = catalog.New(display, nil, nil)
	}
	return Model{
		records:  db.NewRecordsRepository(database),
		history:  db.NewHistoryRepository(database),
		groups:   db.NewGroupsRepository(database),
		catalog:  cat,
		display:  display,
		viewMode: ViewList,
		viewport: viewport.New(80, 16),
		width:    80,
		height:   24,
	}
}

// WithRecord makes the model open id as soon as it starts.
func (m Model) WithRecord(id string) Model {
	m.openID = id
	return m
}

func (m Model) Init() tea.Cmd {
	if m.openID != "" {
		return m.loadRecord(m.openID)
	}
	return m.loadRecords()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)
		m.refreshViewport()
		return m, nil
	case recordsLoadedMsg:
		m.list = msg.records
		m.dir = msg.dir
		m.err = nil
		if m.selectedRow >= len(m.list) {
			m.selectedRow = 0
		}
		return m, nil
	case recordLoadedMsg:
		m.showRecord(msg)
		return m, nil
	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewHistory:
		return m.renderHistoryView()
	case ViewGraph:
		return m.renderGraphView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewHistory:
		return m.handleHistoryKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	}

	return m, nil
}

func (m Model) loadRecords() tea.Cmd {
	records, groups := m.records, m.groups
	return func() tea.Msg {
		ctx := context.Background()
		list, err := records.List(ctx, "", listLimit)
		if err != nil {
			return errMsg{err: err}
		}
		dir, err := groups.Directory(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return recordsLoadedMsg{records: list, dir: dir}
	}
}

func (m Model) loadRecord(id string) tea.Cmd {
	records, history, groups := m.records, m.history, m.groups
	return func() tea.Msg {
		ctx := context.Background()
		rec, err := records.Get(ctx, id)
		if err != nil {
			return errMsg{err: err}
		}
		dir, err := groups.Directory(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		entries, err := history.Entries(ctx, id, 0)
		if err != nil {
			return errMsg{err: err}
		}
		return recordLoadedMsg{record: rec, entries: entries, dir: dir}
	}
}

func (m *Model) showRecord(msg recordLoadedMsg) {
	m.current = msg.record
	m.entries = msg.entries
	m.dir = msg.dir
	m.err = nil

	grouped := m.catalog.Organize(m.catalog.Build(msg.record.Document))
	m.visible = catalog.VisibleGroups(grouped, msg.record.Document)
	m.activeTab = 0

	synth := provenance.New(m.display, m.catalog.Formatter(), msg.dir)
	m.audit = synth.Synthesize(msg.entries)
	m.graphDOT = ""

	m.viewMode = ViewDetail
	m.refreshViewport()
}

// refreshViewport loads the scrollable content of the current view.
func (m *Model) refreshViewport() {
	switch m.viewMode {
	case ViewDetail:
		m.viewport.SetContent(m.renderGroupContent())
	case ViewHistory:
		m.viewport.SetContent(m.renderAuditContent())
	case ViewGraph:
		m.viewport.SetContent(m.graphDOT)
	default:
		return
	}
	m.viewport.GotoTop()
}

func (m Model) recordTitle(rec *db.StoredRecord) string {
	return m.catalog.Title(rec.Document, rec.ID)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
