package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/platform/tui"
)

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "Show the five island shapes",
	Long: `Prints each island shape as it sits on the grid. A duel starts
with every player placing all five on their own board.`,
	Run: runShapes,
}

func runShapes(_ *cobra.Command, _ []string) {
	fmt.Println("Island shapes:")
	fmt.Println()

	for _, t := range game.IslandTypes() {
		island, err := game.NewIsland(t, game.Coordinate{Row: 1, Col: 1})
		if err != nil {
			continue
		}

		fmt.Printf("  %s (%d cells)\n", t, island.Cells.Len())
		for _, line := range strings.Split(tui.RenderShapeDiagram(t), "\n") {
			fmt.Printf("    %s\n", line)
		}
		fmt.Println()
	}

	fmt.Println("Run 'islands play' to line them up on your own grid.")
}
