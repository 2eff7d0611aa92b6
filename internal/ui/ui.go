package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	grid "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/table"
)

const (
	pageStep    = 5
	minColWidth = 4
	maxColWidth = 40
	chromeLines = 9
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	name      string
	table     *table.Table
	grid      grid.Model
	search    textinput.Model
	searching bool
	columns   []string
	column    int
	meta      table.Meta
	width     int
	height    int
	help      help.Model
	keys      keyMap
}

// NewModel creates a TUI over t. name is shown as the title.
func NewModel(ctx context.Context, name string, t *table.Table) *Model {
	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "
	search.CharLimit = 200

	g := grid.New(grid.WithFocused(true), grid.WithHeight(10))
	g.SetStyles(styles.gridStyles())

	return &Model{
		ctx:    ctx,
		name:   name,
		table:  t,
		grid:   g,
		search: search,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init restores the saved page size and fetches the first page.
func (m *Model) Init() tea.Cmd {
	return m.run(m.table.Init)
}

// run performs op against the table in a command and reports the resulting meta.
func (m *Model) run(op func(context.Context)) tea.Cmd {
	m.meta.Loading = true
	return func() tea.Msg {
		op(m.ctx)
		return fetchedMsg(m.table.Meta())
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetWidth(msg.Width)
		m.grid.SetHeight(max(msg.Height-chromeLines, 3))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgFetched:
			m.meta = msg.data.(table.Meta)
			m.refreshGrid()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		return m, m.run(m.table.GoNextPage)
	case key.Matches(msg, m.keys.prev):
		return m, m.run(m.table.GoPrevPage)
	case key.Matches(msg, m.keys.first):
		return m, m.run(m.table.GoFirstPage)
	case key.Matches(msg, m.keys.last):
		return m, m.run(m.table.GoLastPage)
	case key.Matches(msg, m.keys.jump):
		page := min(int(msg.String()[0]-'0'), m.table.TotalPages())
		return m, m.run(func(ctx context.Context) { m.table.GoToPage(ctx, page) })
	case key.Matches(msg, m.keys.grow):
		return m, m.resize(pageStep)
	case key.Matches(msg, m.keys.shrink):
		return m, m.resize(-pageStep)
	case key.Matches(msg, m.keys.refresh):
		return m, m.run(m.table.Fetch)
	case key.Matches(msg, m.keys.column):
		if len(m.columns) > 0 {
			m.column = (m.column + 1) % len(m.columns)
			m.refreshGrid()
		}
		return m, nil
	case key.Matches(msg, m.keys.sort):
		if m.column < len(m.columns) {
			col := m.columns[m.column]
			return m, m.run(func(ctx context.Context) { m.table.ToggleSort(ctx, col) })
		}
		return m, nil
	case key.Matches(msg, m.keys.unsort):
		return m, m.run(m.table.ClearSort)
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.SetValue(m.table.Query().Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.showHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		m.searching = false
		m.search.Blur()
		text := strings.TrimSpace(m.search.Value())
		return m, m.run(func(ctx context.Context) { m.table.Search(ctx, text) })
	case key.Matches(msg, m.keys.cancel):
		m.searching = false
		m.search.Blur()
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// resize changes the page size by delta; the table clamps and persists it.
func (m *Model) resize(delta int) tea.Cmd {
	limit := m.table.Query().Limit + delta
	return m.run(func(ctx context.Context) { m.table.SetLimit(ctx, limit) })
}

// refreshGrid rebuilds the grid columns and rows from the table.
func (m *Model) refreshGrid() {
	cols := m.table.Columns()
	rows := m.table.Rows()

	if !equalColumns(cols, m.columns) {
		m.columns = cols
		if m.column >= len(cols) {
			m.column = 0
		}
	}

	gridRows := make([]grid.Row, len(rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(m.columnTitle(i, c))
	}
	for r, row := range rows {
		cells := make(grid.Row, len(cols))
		for i, c := range cols {
			cells[i] = formatter.Display(row[c])
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
		gridRows[r] = cells
	}

	gridCols := make([]grid.Column, len(cols))
	for i, c := range cols {
		gridCols[i] = grid.Column{Title: m.columnTitle(i, c), Width: min(max(widths[i], minColWidth), maxColWidth)}
	}

	// Rows must never be wider than the columns while either is being replaced.
	m.grid.SetRows(nil)
	m.grid.SetColumns(gridCols)
	m.grid.SetRows(gridRows)
	if m.grid.Cursor() >= len(gridRows) {
		m.grid.SetCursor(max(len(gridRows)-1, 0))
	}
}

// columnTitle marks the selected column and the sort direction.
func (m *Model) columnTitle(i int, col string) string {
	title := col
	if dir, ok := m.table.SortDirection(col); ok {
		if dir == table.Asc {
			title += " ▲"
		} else {
			title += " ▼"
		}
	}
	if i == m.column {
		title = "›" + title
	}
	return title
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// View renders the title, grid, status and page lines, and help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(m.name))
	b.WriteString("\n")
	b.WriteString(m.grid.View())
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.pageLine())
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.keys.searchHelp()))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) statusLine() string {
	status := m.meta.Status
	switch {
	case m.meta.Err != nil:
		return styles.err.Render(fmt.Sprintf("%s: %v", status, m.meta.Err))
	case m.meta.Loading || status == "":
		return styles.warn.Render(status)
	default:
		return styles.ok.Render(status)
	}
}

func (m *Model) pageLine() string {
	q := m.table.Query()
	parts := []string{fmt.Sprintf("Page %d of %d", m.table.CurrentPage(), max(m.table.TotalPages(), 1))}
	parts = append(parts, fmt.Sprintf("%d per page", q.Limit))
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	return styles.help.Render(strings.Join(parts, " · "))
}
