package agent

import (
	"sort"

	"github.com/RexSXP/marl-delivery/internal/algo"
	"github.com/RexSXP/marl-delivery/internal/core"
)

// Planner coordinates the fleet with prioritized space-time planning.
// Targets are assigned like Greedy, nearest package first, but instead of
// walking blindly each robot books a collision-free path in a shared
// reservation table, loaded robots first. Only the first step of a path is
// issued; the fleet replans every tick, so a plan that went stale heals on
// the next observation.
type Planner struct {
	book   *Tracker
	claims map[core.RobotID]core.PackageID
	dists  map[core.Cell]*algo.DistanceMap
}

// NewPlanner builds the planning policy with an empty book.
func NewPlanner() *Planner {
	return &Planner{
		book:   NewTracker(),
		claims: make(map[core.RobotID]core.PackageID),
		dists:  make(map[core.Cell]*algo.DistanceMap),
	}
}

func (a *Planner) Init(snap core.Snapshot) {
	a.book = NewTracker()
	a.claims = make(map[core.RobotID]core.PackageID)
	a.dists = make(map[core.Cell]*algo.DistanceMap)
	a.book.Observe(snap)
}

func (a *Planner) Name() string { return "planner" }

// distancesTo returns cached breadth-first distances from a goal cell. The
// grid never changes within an episode, so entries stay valid.
func (a *Planner) distancesTo(g *core.Grid, goal core.Cell) *algo.DistanceMap {
	if m, ok := a.dists[goal]; ok {
		return m
	}
	m := algo.Distances(g, goal)
	a.dists[goal] = m
	return m
}

// intent is the cell a robot wants to reach this round and the package
// operation to fire once it stands there.
type intent struct {
	goal    core.Cell
	pkg     core.PackageAction
	hasGoal bool
}

func (a *Planner) Actions(snap core.Snapshot) []core.Action {
	a.book.Observe(snap)
	acts := make([]core.Action, len(snap.Robots))

	waiting := make(map[core.PackageID]core.PackageView)
	for _, pv := range a.book.Waiting() {
		waiting[pv.ID] = pv
	}
	// A claim survives only while its package is still on the floor.
	for rid, pid := range a.claims {
		if _, ok := waiting[pid]; !ok {
			delete(a.claims, rid)
		}
	}
	taken := make(map[core.PackageID]bool, len(a.claims))
	for _, pid := range a.claims {
		taken[pid] = true
	}

	intents := make([]intent, len(snap.Robots))
	for i, rv := range snap.Robots {
		rid := core.RobotID(i)
		if rv.Carrying != 0 {
			delete(a.claims, rid)
			pv, ok := a.book.View(rv.Carrying)
			if !ok {
				continue
			}
			intents[i] = intent{goal: pv.TargetCell(), pkg: core.PackageDrop, hasGoal: true}
			continue
		}
		pid, ok := a.claims[rid]
		if !ok {
			pid, ok = nearestPackage(snap.Grid, rv.Cell(), waiting, taken)
			if !ok {
				continue
			}
			a.claims[rid] = pid
			taken[pid] = true
		}
		intents[i] = intent{goal: waiting[pid].StartCell(), pkg: core.PackagePickup, hasGoal: true}
	}

	// Robots that stand still this tick are booked before anyone plans a
	// path, so the planners see them as obstacles from the start.
	rt := algo.NewReservationTable()
	moving := make([]bool, len(snap.Robots))
	for i, rv := range snap.Robots {
		pos := rv.Cell()
		if !intents[i].hasGoal {
			rt.Park(pos, snap.Tick)
			continue
		}
		if pos == intents[i].goal {
			acts[i] = core.Action{Pkg: intents[i].pkg}
			rt.Park(pos, snap.Tick)
			continue
		}
		moving[i] = true
	}

	// Loaded robots plan first; ties go to the lower index.
	order := make([]int, 0, len(snap.Robots))
	for i := range snap.Robots {
		if moving[i] {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(x, y int) bool {
		ri, rj := order[x], order[y]
		ci := snap.Robots[ri].Carrying != 0
		cj := snap.Robots[rj].Carrying != 0
		if ci != cj {
			return ci
		}
		return ri < rj
	})

	for _, i := range order {
		pos := snap.Robots[i].Cell()
		in := intents[i]
		dist := a.distancesTo(snap.Grid, in.goal)
		d := dist.At(pos)
		if d < 0 {
			rt.Park(pos, snap.Tick)
			continue
		}
		// The horizon covers the static distance plus slack for waiting
		// out the rest of the fleet.
		budget := d + 4*len(snap.Robots) + 8
		path := algo.FindPath(snap.Grid, dist, pos, in.goal, snap.Tick, rt, snap.Tick+budget)
		if len(path) < 2 {
			// No route this round. Hold the cell and retry next tick.
			rt.Park(pos, snap.Tick)
			continue
		}
		acts[i] = core.Action{Move: stepBetween(pos, path[1])}
		if path[1] == in.goal {
			// Landing on the goal: fire the package op the same tick.
			acts[i].Pkg = in.pkg
		}
		rt.ReservePath(path, snap.Tick)
	}
	return acts
}

// stepBetween maps two adjacent cells onto the move connecting them.
func stepBetween(from, to core.Cell) core.MoveAction {
	switch {
	case to.Row == from.Row-1:
		return core.MoveUp
	case to.Row == from.Row+1:
		return core.MoveDown
	case to.Col == from.Col-1:
		return core.MoveLeft
	case to.Col == from.Col+1:
		return core.MoveRight
	}
	return core.MoveStay
}
