package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// IslandsTheme contains all configurable visual styles for the duel screens.
type IslandsTheme struct {
	// Own board cells
	Water      lipgloss.Style
	Island     lipgloss.Style
	IslandHit  lipgloss.Style
	IslandLost lipgloss.Style

	// Target grid cells
	Unknown lipgloss.Style
	Hit     lipgloss.Style
	Miss    lipgloss.Style

	// Placement preview
	Ghost    lipgloss.Style
	GhostBad lipgloss.Style
	Cursor   lipgloss.Style

	// HUD styles
	HUDTitle    lipgloss.Style
	HUDLabel    lipgloss.Style
	HUDValue    lipgloss.Style
	HUDControls lipgloss.Style

	// Banner styles
	TurnActive  lipgloss.Style
	TurnWaiting lipgloss.Style
	Victory     lipgloss.Style
	Defeat      lipgloss.Style
	ErrorText   lipgloss.Style

	// Lobby styles
	CodeBox      lipgloss.Style
	OverlayTitle lipgloss.Style
	OverlayText  lipgloss.Style
}

// DefaultIslandsTheme returns the default visual theme.
func DefaultIslandsTheme() IslandsTheme {
	return IslandsTheme{
		// Own board - calm sea, green land
		Water:      lipgloss.NewStyle().Foreground(lipgloss.Color("24")),  // Deep blue
		Island:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // Forest green
		IslandHit:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // Bright red
		IslandLost: lipgloss.NewStyle().Foreground(lipgloss.Color("94")),  // Scorched brown

		// Target grid - fog of war
		Unknown: lipgloss.NewStyle().Foreground(lipgloss.Color("238")), // Dark gray
		Hit:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Miss:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")), // Splash blue

		// Placement preview
		Ghost:    lipgloss.NewStyle().Foreground(lipgloss.Color("46")),  // Lime green
		GhostBad: lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Deep red
		Cursor:   lipgloss.NewStyle().Background(lipgloss.Color("57")),  // Violet block

		// HUD styles
		HUDTitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDControls: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		// Banners
		TurnActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		TurnWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Victory:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Defeat:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		ErrorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),

		// Lobby
		CodeBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(0, 2).
			Bold(true),
		OverlayTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		OverlayText:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	}
}

// MonochromeIslandsTheme returns a grayscale theme for limited terminals.
func MonochromeIslandsTheme() IslandsTheme {
	theme := DefaultIslandsTheme()
	theme.Water = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	theme.Island = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	theme.IslandHit = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	theme.IslandLost = lipgloss.NewStyle().Foreground(lipgloss.Color("235"))
	theme.Unknown = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	theme.Hit = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.Miss = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	theme.Ghost = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	theme.GhostBad = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	return theme
}

// Global theme variable (can be changed at runtime)
var islandsTheme = DefaultIslandsTheme()

// SetIslandsTheme sets the global theme.
func SetIslandsTheme(theme IslandsTheme) {
	islandsTheme = theme
}

// GetIslandsTheme returns the current global theme.
func GetIslandsTheme() IslandsTheme {
	return islandsTheme
}
