package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Menu item IDs.
const (
	MenuItemBot     = "bot"
	MenuItemHost    = "host"
	MenuItemJoin    = "join"
	MenuItemHistory = "history"
)

// MenuItem represents a selectable mode in the main menu.
type MenuItem struct {
	ID    string
	Title string
	Desc  string
}

// LocalMenuItems returns the modes available in a local terminal.
// Hosting and joining need the shared directory of an SSH server.
func LocalMenuItems() []MenuItem {
	return []MenuItem{
		{ID: MenuItemBot, Title: "Duel the bot", Desc: "Place your islands and face the computer"},
		{ID: MenuItemHistory, Title: "Match history", Desc: "Browse archived matches"},
	}
}

// ServerMenuItems returns the modes available in an SSH session.
func ServerMenuItems() []MenuItem {
	return []MenuItem{
		{ID: MenuItemBot, Title: "Duel the bot", Desc: "Place your islands and face the computer"},
		{ID: MenuItemHost, Title: "Host a match", Desc: "Get a join code and wait for a rival"},
		{ID: MenuItemJoin, Title: "Join a match", Desc: "Enter a join code from another player"},
		{ID: MenuItemHistory, Title: "Match history", Desc: "Browse archived matches"},
	}
}

// MenuModel is the Bubble Tea model for the mode picker menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem // Set when user selects a mode
}

// NewMenuModel creates a new menu model.
func NewMenuModel(items []MenuItem, width, height int) MenuModel {
	return MenuModel{
		items:     items,
		cursor:    0,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the selected mode
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.HUDTitle.Render(centerText("I S L A N D S", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Sink every island your rival hides", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	// Description of the hovered item
	b.WriteString("\n")
	if len(m.items) > 0 {
		b.WriteString(theme.HUDLabel.Render(centerText(m.items[m.cursor].Desc, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(theme.HUDControls.Render(centerText(controls, m.width)))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	ID     string
	Width  int
	Height int
	Quit   bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(items []MenuItem, width, height int) (MenuResult, error) {
	model := NewMenuModel(items, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Width: width, Height: height}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Width: width, Height: height, Quit: true}, nil
	}

	result := MenuResult{
		Width:  m.width,
		Height: m.height,
	}

	if m.IsQuitting() {
		result.Quit = true
		return result, nil
	}

	if m.Selected() != nil {
		result.ID = m.Selected().ID
	} else {
		result.Quit = true
	}

	return result, nil
}
