package sim

import (
	"container/heap"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// propose computes the cell a move action aims at. Moves that would leave
// the grid or enter an obstacle collapse back to the current cell.
func propose(g *core.Grid, from core.Cell, move core.MoveAction) core.Cell {
	dr, dc := move.Delta()
	to := from.Add(dr, dc)
	if !g.IsFree(to) {
		return from
	}
	return to
}

// robotIndexHeap is a min-heap of robot indices.
type robotIndexHeap []int

func (h robotIndexHeap) Len() int           { return len(h) }
func (h robotIndexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h robotIndexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *robotIndexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *robotIndexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// resolveMoves decides every robot's final cell for one tick.
//
// Robot i waits on robot j when i's proposed cell is j's current cell, so
// the waits-for graph has out-degree at most one. Robots whose dependency
// is settled are decided in ascending index order: a robot takes its
// proposed cell unless an earlier decision already claimed it, in which
// case it stays and claims its current cell, bumping back everyone queued
// behind it. Robots never decided form pure cycles (direct swaps included)
// and stay in place. Final cells are pairwise distinct.
func resolveMoves(positions, proposed []core.Cell) (final []core.Cell, moved []bool) {
	n := len(positions)
	final = make([]core.Cell, n)
	moved = make([]bool, n)

	occupant := make(map[core.Cell]int, n)
	for i, pos := range positions {
		occupant[pos] = i
	}

	// Robot i's only possible blocker is the occupant of its proposed cell.
	dependents := make([][]int, n)
	ready := &robotIndexHeap{}
	for i := 0; i < n; i++ {
		if j, ok := occupant[proposed[i]]; ok && j != i {
			dependents[j] = append(dependents[j], i)
		} else {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	decided := make([]bool, n)
	claimed := make(map[core.Cell]bool, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		if claimed[proposed[i]] {
			// Bumped back: hold the current cell instead.
			final[i] = positions[i]
			claimed[positions[i]] = true
		} else {
			final[i] = proposed[i]
			claimed[proposed[i]] = true
			moved[i] = final[i] != positions[i]
		}
		decided[i] = true
		for _, k := range dependents[i] {
			heap.Push(ready, k)
		}
	}

	for i := 0; i < n; i++ {
		if !decided[i] {
			final[i] = positions[i]
		}
	}
	return final, moved
}
