package agent

import (
	"sort"

	"github.com/RexSXP/marl-delivery/internal/algo"
	"github.com/RexSXP/marl-delivery/internal/core"
)

// Greedy sends every free robot to the nearest unclaimed waiting package
// and every loaded robot to its delivery cell, issuing pickups and drops
// on arrival. A package is chased by at most one robot at a time; claims
// are released when the package leaves the floor. Movement conflicts are
// left to the environment, so two crossing robots may block each other.
type Greedy struct {
	book   *Tracker
	claims map[core.RobotID]core.PackageID
}

// NewGreedy builds the greedy policy with an empty book.
func NewGreedy() *Greedy {
	return &Greedy{
		book:   NewTracker(),
		claims: make(map[core.RobotID]core.PackageID),
	}
}

func (a *Greedy) Init(snap core.Snapshot) {
	a.book = NewTracker()
	a.claims = make(map[core.RobotID]core.PackageID)
	a.book.Observe(snap)
}

func (a *Greedy) Name() string { return "greedy" }

func (a *Greedy) Actions(snap core.Snapshot) []core.Action {
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

	for i, rv := range snap.Robots {
		rid := core.RobotID(i)
		pos := rv.Cell()

		// Loaded robots head straight for the delivery cell.
		if rv.Carrying != 0 {
			delete(a.claims, rid)
			pv, ok := a.book.View(rv.Carrying)
			if !ok {
				continue
			}
			target := pv.TargetCell()
			if pos == target {
				acts[i] = core.Action{Pkg: core.PackageDrop}
				continue
			}
			if move, _, ok := algo.NextStep(snap.Grid, pos, target); ok {
				acts[i] = core.Action{Move: move}
			}
			continue
		}

		// Free robots take (or keep) the nearest reachable package.
		pid, ok := a.claims[rid]
		if !ok {
			pid, ok = nearestPackage(snap.Grid, pos, waiting, taken)
			if !ok {
				continue
			}
			a.claims[rid] = pid
			taken[pid] = true
		}
		start := waiting[pid].StartCell()
		if pos == start {
			acts[i] = core.Action{Pkg: core.PackagePickup}
			continue
		}
		if move, _, ok := algo.NextStep(snap.Grid, pos, start); ok {
			acts[i] = core.Action{Move: move}
		}
	}
	return acts
}

// nearestPackage picks the unclaimed waiting package with the shortest
// path from pos, breaking distance ties by lowest ID.
func nearestPackage(g *core.Grid, pos core.Cell, waiting map[core.PackageID]core.PackageView, taken map[core.PackageID]bool) (core.PackageID, bool) {
	ids := make([]core.PackageID, 0, len(waiting))
	for id := range waiting {
		if !taken[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	m := algo.Distances(g, pos)
	best := core.PackageID(0)
	bestDist := -1
	for _, id := range ids {
		d := m.At(waiting[id].StartCell())
		if d < 0 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist >= 0
}
