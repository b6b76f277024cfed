// Package algo provides grid pathfinding for delivery policies.
package algo

import "github.com/RexSXP/marl-delivery/internal/core"

// Expansion order is fixed so path choice is deterministic across runs.
var neighborDeltas = [4]struct{ dr, dc int }{
	{-1, 0}, // up
	{1, 0},  // down
	{0, -1}, // left
	{0, 1},  // right
}

var stepOrder = [4]core.MoveAction{core.MoveUp, core.MoveDown, core.MoveLeft, core.MoveRight}

// DistanceMap holds breadth-first distances from a source cell.
type DistanceMap struct {
	dist [][]int
}

// Distances runs a breadth-first search from src over the free cells.
// Unreachable cells hold -1.
func Distances(g *core.Grid, src core.Cell) *DistanceMap {
	m := &DistanceMap{dist: make([][]int, g.Rows())}
	for i := range m.dist {
		m.dist[i] = make([]int, g.Cols())
		for j := range m.dist[i] {
			m.dist[i][j] = -1
		}
	}
	if !g.IsFree(src) {
		return m
	}
	m.dist[src.Row][src.Col] = 0
	queue := []core.Cell{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := m.dist[cur.Row][cur.Col]
		for _, nd := range neighborDeltas {
			next := cur.Add(nd.dr, nd.dc)
			if g.IsFree(next) && m.dist[next.Row][next.Col] == -1 {
				m.dist[next.Row][next.Col] = d + 1
				queue = append(queue, next)
			}
		}
	}
	return m
}

// At returns the distance to c, or -1 when c is unreachable or off-grid.
func (m *DistanceMap) At(c core.Cell) int {
	if c.Row < 0 || c.Row >= len(m.dist) || c.Col < 0 || c.Col >= len(m.dist[0]) {
		return -1
	}
	return m.dist[c.Row][c.Col]
}

// NextStep returns the first move of a shortest path from one cell to
// another, with the remaining step count. ok is false when no path exists.
// From a cell to itself the move is a stay.
func NextStep(g *core.Grid, from, to core.Cell) (move core.MoveAction, steps int, ok bool) {
	if from == to {
		return core.MoveStay, 0, true
	}
	m := Distances(g, to)
	d := m.At(from)
	if d < 0 {
		return core.MoveStay, 0, false
	}
	for _, mv := range stepOrder {
		dr, dc := mv.Delta()
		if m.At(from.Add(dr, dc)) == d-1 {
			return mv, d, true
		}
	}
	return core.MoveStay, 0, false
}
