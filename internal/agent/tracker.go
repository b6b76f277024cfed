package agent

import (
	"sort"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// Tracker accumulates the progressive package reveals into a persistent
// book. It watches carrying transitions to tell which packages left the
// floor and which were delivered: a drop only ever succeeds on the target
// cell, so a package that vanishes from a robot's hands is done.
type Tracker struct {
	known   map[core.PackageID]core.PackageView
	carried map[core.PackageID]core.RobotID
}

// NewTracker returns an empty book.
func NewTracker() *Tracker {
	return &Tracker{
		known:   make(map[core.PackageID]core.PackageView),
		carried: make(map[core.PackageID]core.RobotID),
	}
}

// Observe folds one snapshot into the book. Observing the same snapshot
// twice is harmless.
func (t *Tracker) Observe(snap core.Snapshot) {
	for _, pv := range snap.Packages {
		t.known[pv.ID] = pv
	}
	now := make(map[core.PackageID]core.RobotID, len(snap.Robots))
	for i, rv := range snap.Robots {
		if rv.Carrying != 0 {
			now[rv.Carrying] = core.RobotID(i)
		}
	}
	for id := range t.carried {
		if _, still := now[id]; !still {
			delete(t.known, id)
		}
	}
	t.carried = now
}

// View returns a known, undelivered package.
func (t *Tracker) View(id core.PackageID) (core.PackageView, bool) {
	pv, ok := t.known[id]
	return pv, ok
}

// Waiting returns the revealed packages still sitting on the floor, in
// ascending ID order.
func (t *Tracker) Waiting() []core.PackageView {
	ids := make([]core.PackageID, 0, len(t.known))
	for id := range t.known {
		if _, inHands := t.carried[id]; !inHands {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]core.PackageView, len(ids))
	for i, id := range ids {
		out[i] = t.known[id]
	}
	return out
}

// Carrier reports which robot holds the package, if any.
func (t *Tracker) Carrier(id core.PackageID) (core.RobotID, bool) {
	rid, ok := t.carried[id]
	return rid, ok
}
