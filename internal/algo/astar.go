package algo

import (
	"container/heap"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// spaceTimeState is a (cell, tick) pair in the space-time search graph.
type spaceTimeState struct {
	cell core.Cell
	tick int
}

// astarNode for the open list.
type astarNode struct {
	state  spaceTimeState
	g      int // Ticks elapsed so far
	f      int // g + h
	parent *astarNode
	index  int // heap index
}

// astarHeap implements heap.Interface.
type astarHeap []*astarNode

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

type edgeKey struct {
	from, to core.Cell
	tick     int
}

// ReservationTable records the cells and edges claimed by robots that were
// planned earlier, so robots planned later route around them. A parked cell
// is claimed from its tick onward, modelling a robot that has reached the
// end of its path and sits there.
type ReservationTable struct {
	vertex map[spaceTimeState]bool
	edge   map[edgeKey]bool
	parked map[core.Cell]int
}

// NewReservationTable returns an empty table.
func NewReservationTable() *ReservationTable {
	return &ReservationTable{
		vertex: make(map[spaceTimeState]bool),
		edge:   make(map[edgeKey]bool),
		parked: make(map[core.Cell]int),
	}
}

// ReservePath claims every cell and edge of a path starting at startTick,
// with path[i] occupied at startTick+i. The final cell stays claimed past
// the end of the path.
func (r *ReservationTable) ReservePath(path []core.Cell, startTick int) {
	for i, c := range path {
		r.vertex[spaceTimeState{cell: c, tick: startTick + i}] = true
		if i > 0 && path[i-1] != c {
			r.edge[edgeKey{from: path[i-1], to: c, tick: startTick + i - 1}] = true
		}
	}
	if len(path) > 0 {
		r.Park(path[len(path)-1], startTick+len(path)-1)
	}
}

// Park claims a cell from the given tick onward.
func (r *ReservationTable) Park(c core.Cell, fromTick int) {
	if t, ok := r.parked[c]; !ok || fromTick < t {
		r.parked[c] = fromTick
	}
}

// Blocked reports whether moving between adjacent cells during the given
// tick collides with a reservation. Waiting is a move with from == to.
func (r *ReservationTable) Blocked(from, to core.Cell, tick int) bool {
	if r.vertex[spaceTimeState{cell: to, tick: tick + 1}] {
		return true
	}
	if t, ok := r.parked[to]; ok && tick+1 >= t {
		return true
	}
	// Swap conflict: the same edge was claimed in the other direction.
	if from != to && r.edge[edgeKey{from: to, to: from, tick: tick}] {
		return true
	}
	return false
}

// FindPath runs space-time A* from start to goal, routing around the
// reservation table. dist must hold breadth-first distances from the goal;
// it doubles as the heuristic. The result holds the robot's cell at every
// tick from startTick on, beginning with start itself, or nil when no path
// exists by maxTick.
func FindPath(g *core.Grid, dist *DistanceMap, start, goal core.Cell, startTick int, rt *ReservationTable, maxTick int) []core.Cell {
	if dist.At(start) < 0 {
		return nil
	}

	open := &astarHeap{}
	heap.Init(open)
	heap.Push(open, &astarNode{
		state: spaceTimeState{cell: start, tick: startTick},
		g:     0,
		f:     dist.At(start),
	})
	visited := make(map[spaceTimeState]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.state.cell == goal {
			return reconstructPath(current)
		}
		if visited[current.state] {
			continue
		}
		visited[current.state] = true

		if current.state.tick >= maxTick {
			continue
		}

		// Wait in place.
		if !rt.Blocked(current.state.cell, current.state.cell, current.state.tick) {
			next := spaceTimeState{cell: current.state.cell, tick: current.state.tick + 1}
			if !visited[next] {
				heap.Push(open, &astarNode{
					state:  next,
					g:      current.g + 1,
					f:      current.g + 1 + dist.At(current.state.cell),
					parent: current,
				})
			}
		}

		// Directional moves.
		for _, nd := range neighborDeltas {
			cell := current.state.cell.Add(nd.dr, nd.dc)
			if !g.IsFree(cell) || dist.At(cell) < 0 {
				continue
			}
			if rt.Blocked(current.state.cell, cell, current.state.tick) {
				continue
			}
			next := spaceTimeState{cell: cell, tick: current.state.tick + 1}
			if visited[next] {
				continue
			}
			heap.Push(open, &astarNode{
				state:  next,
				g:      current.g + 1,
				f:      current.g + 1 + dist.At(cell),
				parent: current,
			})
		}
	}
	return nil
}

func reconstructPath(node *astarNode) []core.Cell {
	var path []core.Cell
	for n := node; n != nil; n = n.parent {
		path = append([]core.Cell{n.state.cell}, path...)
	}
	return path
}
