package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-islands/internal/storage"
)

// History layout constants
const (
	historyTableMinWidth = 50  // Minimum table width
	maxHistoryRows       = 100 // Max matches to load
)

// historyTab selects which slice of the archive is shown.
type historyTab int

const (
	tabRecent historyTab = iota
	tabMine
)

// HistoryKeyMap defines the key bindings for the match history screen.
type HistoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "switch tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "switch tab"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for the match history screen.
// It shows the recent archive and, when a player name is known, that
// player's own matches with a stats line.
type HistoryModel struct {
	store    *storage.Store
	player   string // Empty hides the "my matches" tab
	tab      historyTab
	matches  []storage.MatchRecord
	stats    *storage.PlayerStats
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	width    int
	height   int
	quitting bool
	back     bool
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(store *storage.Store, player string, width, height int) HistoryModel {
	keys := DefaultHistoryKeyMap()
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		store:  store,
		player: player,
		tab:    tabRecent,
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}

	m.table = m.createTable()
	m.loadMatches()

	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 13},
		{Title: "Code", Width: 7},
		{Title: "Players", Width: 22},
		{Title: "Winner", Width: 10},
		{Title: "Shots", Width: 7},
		{Title: "Time", Width: 6},
	}

	// Grow the players column on wide terminals
	tableWidth := m.width - 6
	if tableWidth > historyTableMinWidth+20 {
		columns[2].Width = 30
		columns[3].Width = 12
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(m.height-9), // Leave room for title, tabs, help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadMatches loads the archive slice for the current tab.
func (m *HistoryModel) loadMatches() {
	m.stats = nil
	if m.store == nil {
		m.matches = nil
		m.updateTableRows()
		return
	}

	var (
		matches []storage.MatchRecord
		err     error
	)
	switch m.tab {
	case tabMine:
		matches, err = m.store.PlayerMatches(m.player, maxHistoryRows)
		if err == nil {
			m.stats, _ = m.store.GetPlayerStats(m.player)
		}
	default:
		matches, err = m.store.RecentMatches(maxHistoryRows)
	}

	if err != nil {
		m.matches = nil
	} else {
		m.matches = matches
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the current matches.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.matches))
	for i, rec := range m.matches {
		winner := rec.Winner
		if winner == "" {
			winner = "-"
		}
		rows[i] = table.Row{
			rec.CreatedAt.Format("Jan 02 15:04"),
			rec.Code,
			fmt.Sprintf("%s vs %s", rec.Player1, rec.Player2),
			winner,
			fmt.Sprintf("%d/%d", rec.Shots1, rec.Shots2),
			formatDuration(rec.DurationSecs),
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// formatDuration renders seconds as a compact m:ss clock.
func formatDuration(secs int) string {
	if secs <= 0 {
		return "-"
	}
	d := time.Duration(secs) * time.Second
	mins := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", mins, secs-mins*60)
}

// hasMineTab reports whether there is a player to filter by.
func (m HistoryModel) hasMineTab() bool {
	return m.player != ""
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.back = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
			if m.hasMineTab() {
				if m.tab == tabRecent {
					m.tab = tabMine
				} else {
					m.tab = tabRecent
				}
				m.loadMatches()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	b.WriteString(titleStyle.Render(centerText("MATCH HISTORY", m.width)))
	b.WriteString("\n\n")

	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	if m.tab == tabMine && m.stats != nil {
		b.WriteString("\n")
		b.WriteString(centerText(m.renderStatsLine(), m.width))
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTabs renders the tab line, highlighting the active one.
func (m HistoryModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	labels := []string{"Recent"}
	if m.hasMineTab() {
		labels = append(labels, fmt.Sprintf("My matches (%s)", m.player))
	}

	tabs := make([]string, len(labels))
	for i, label := range labels {
		if historyTab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(tabs, " ")
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.matches) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No matches recorded yet.\nWin a duel to start your archive!")
	}

	return m.table.View()
}

// renderStatsLine summarizes the player's record under the table.
func (m HistoryModel) renderStatsLine() string {
	s := m.stats
	return fmt.Sprintf("Played %d  |  Won %d  |  Lost %d  |  Abandoned %d  |  Shots fired %d",
		s.Played, s.Wins, s.Losses, s.Abandoned, s.TotalShots)
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.back
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the match history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, player string, width, height int) (goBack bool, err error) {
	model := NewHistoryModel(store, player, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
