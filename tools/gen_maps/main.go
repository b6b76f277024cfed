// Package main generates random grid maps for delivery benchmarks.
// Generation is deterministic for a given seed; layouts whose free cells
// are not 4-connected are rejected and redrawn.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/RexSXP/marl-delivery/internal/algo"
	"github.com/RexSXP/marl-delivery/internal/core"
)

const maxAttempts = 200

func main() {
	rows := flag.Int("rows", 12, "map height in cells")
	cols := flag.Int("cols", 12, "map width in cells")
	density := flag.Float64("density", 0.18, "obstacle density (0-1)")
	count := flag.Int("count", 5, "number of maps to generate")
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	outputDir := flag.String("output", "maps", "output directory")
	flag.Parse()

	if *density < 0 || *density >= 1 {
		fmt.Fprintf(os.Stderr, "density %.2f out of range [0, 1)\n", *density)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	for i := 1; i <= *count; i++ {
		g, attempts, err := generateConnected(rng, *rows, *cols, *density)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating map %d: %v\n", i, err)
			os.Exit(1)
		}

		name := fmt.Sprintf("gen_%dx%d_d%02d_%d.txt", *rows, *cols, int(*density*100), i)
		filename := filepath.Join(*outputDir, name)
		if err := os.WriteFile(filename, []byte(g.Text()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
			os.Exit(1)
		}

		fmt.Printf("%s: %dx%d, %d free cells, %d attempt(s)\n",
			filename, *rows, *cols, len(g.FreeCells()), attempts)
	}
}

// generateConnected draws obstacle layouts until the free cells form a
// single 4-connected component.
func generateConnected(rng *rand.Rand, rows, cols int, density float64) (*core.Grid, int, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cells := make([][]int, rows)
		for r := range cells {
			cells[r] = make([]int, cols)
			for c := range cells[r] {
				if rng.Float64() < density {
					cells[r][c] = 1
				}
			}
		}
		g, err := core.NewGrid(cells)
		if err != nil {
			return nil, attempt, err
		}
		if connected(g) {
			return g, attempt, nil
		}
	}
	return nil, maxAttempts, fmt.Errorf("no connected %dx%d layout at density %.2f in %d attempts",
		rows, cols, density, maxAttempts)
}

// connected reports whether every free cell is reachable from every other.
func connected(g *core.Grid) bool {
	free := g.FreeCells()
	if len(free) == 0 {
		return false
	}
	dist := algo.Distances(g, free[0])
	for _, c := range free {
		if dist.At(c) < 0 {
			return false
		}
	}
	return true
}
