package tui

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-islands/internal/game"
)

// Cell glyphs. Two columns per cell keep the 10x10 grid roughly square.
const (
	glyphWater      = "~ "
	glyphIsland     = "██"
	glyphIslandHit  = "××"
	glyphIslandLost = "▓▓"
	glyphGhost      = "░░"
	glyphUnknown    = "· "
	glyphHit        = "××"
	glyphMiss       = "○ "
)

type ownCell int

const (
	ownWater ownCell = iota
	ownIsland
	ownIslandHit
	ownIslandLost
)

// ownBoardCells flattens a board into a per-coordinate cell kind.
// Missing coordinates are water.
func ownBoardCells(board game.Board) map[game.Coordinate]ownCell {
	cells := make(map[game.Coordinate]ownCell)
	for _, island := range board {
		lost := island.Destroyed()
		for c := range island.Cells {
			switch {
			case lost:
				cells[c] = ownIslandLost
			case island.Hits.Contains(c):
				cells[c] = ownIslandHit
			default:
				cells[c] = ownIsland
			}
		}
	}
	return cells
}

// renderOwnBoard renders the player's own waters: islands, the hits the
// opponent has landed on them, and optionally a placement ghost under
// the cursor. ghostBad cells mark a preview that conflicts with an
// already placed island.
func renderOwnBoard(board game.Board, ghost, ghostBad game.CoordinateSet, cursor *game.Coordinate) string {
	theme := GetIslandsTheme()
	cells := ownBoardCells(board)

	var b strings.Builder
	b.WriteString(gridHeader())

	for row := 1; row <= game.BoardSize; row++ {
		fmt.Fprintf(&b, "%2d  ", row)
		for col := 1; col <= game.BoardSize; col++ {
			c := game.Coordinate{Row: row, Col: col}

			glyph := glyphWater
			style := theme.Water
			switch {
			case ghostBad != nil && ghostBad.Contains(c):
				glyph, style = glyphGhost, theme.GhostBad
			case ghost != nil && ghost.Contains(c):
				glyph, style = glyphGhost, theme.Ghost
			default:
				switch cells[c] {
				case ownIsland:
					glyph, style = glyphIsland, theme.Island
				case ownIslandHit:
					glyph, style = glyphIslandHit, theme.IslandHit
				case ownIslandLost:
					glyph, style = glyphIslandLost, theme.IslandLost
				}
			}

			if cursor != nil && *cursor == c {
				style = style.Background(theme.Cursor.GetBackground())
			}

			b.WriteString(style.Render(glyph))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderTargetGrid renders the opponent's waters as known from the
// player's own shots: hits, misses, and fog everywhere else.
func renderTargetGrid(shots game.ShotLog, cursor *game.Coordinate) string {
	theme := GetIslandsTheme()

	var b strings.Builder
	b.WriteString(gridHeader())

	for row := 1; row <= game.BoardSize; row++ {
		fmt.Fprintf(&b, "%2d  ", row)
		for col := 1; col <= game.BoardSize; col++ {
			c := game.Coordinate{Row: row, Col: col}

			glyph := glyphUnknown
			style := theme.Unknown
			switch {
			case shots.Hits.Contains(c):
				glyph, style = glyphHit, theme.Hit
			case shots.Misses.Contains(c):
				glyph, style = glyphMiss, theme.Miss
			}

			if cursor != nil && *cursor == c {
				style = style.Background(theme.Cursor.GetBackground())
			}

			b.WriteString(style.Render(glyph))
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

// gridHeader returns the column number row above a board.
func gridHeader() string {
	var b strings.Builder
	b.WriteString("    ")
	for col := 1; col <= game.BoardSize; col++ {
		fmt.Fprintf(&b, "%2d ", col)
	}
	b.WriteByte('\n')
	return b.String()
}

// boardLegend returns a one-line legend for the board glyphs.
func boardLegend() string {
	theme := GetIslandsTheme()
	parts := []string{
		theme.Island.Render(glyphIsland) + " island",
		theme.IslandHit.Render(glyphIslandHit) + " hit",
		theme.Miss.Render(glyphMiss) + " miss",
		theme.IslandLost.Render(glyphIslandLost) + " destroyed",
	}
	return strings.Join(parts, "   ")
}

// RenderShapeDiagram renders an island shape as a plain-text diagram,
// anchored at its top-left corner. Returns "" for unknown shapes.
func RenderShapeDiagram(t game.IslandType) string {
	island, err := game.NewIsland(t, game.Coordinate{Row: 1, Col: 1})
	if err != nil {
		return ""
	}

	maxRow, maxCol := 1, 1
	for c := range island.Cells {
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}

	var b strings.Builder
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			if island.Cells.Contains(game.Coordinate{Row: row, Col: col}) {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
