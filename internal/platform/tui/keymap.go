package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMapper translates Bubble Tea key messages to menu and grid actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}

// GridAction represents movement and commands on a 10x10 board.
type GridAction int

const (
	GridActionNone GridAction = iota
	GridActionUp
	GridActionDown
	GridActionLeft
	GridActionRight
	GridActionConfirm
	GridActionNextShape
	GridActionPrevShape
	GridActionReady
	GridActionBack
	GridActionQuit
)

// MapKeyToGridAction translates a key to a grid action.
// Used by both the placement and battle screens.
func (km *KeyMapper) MapKeyToGridAction(msg tea.KeyMsg) GridAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return GridActionQuit
	case "w", "up", "k":
		return GridActionUp
	case "s", "down", "j":
		return GridActionDown
	case "a", "left", "h":
		return GridActionLeft
	case "d", "right", "l":
		return GridActionRight
	case "enter", " ":
		return GridActionConfirm
	case "tab", "n":
		return GridActionNextShape
	case "shift+tab", "p":
		return GridActionPrevShape
	case "r":
		return GridActionReady
	case "b", "esc":
		return GridActionBack
	}

	return GridActionNone
}
