package agent

import (
	"testing"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/sim"
)

func TestGreedy_DeliversSinglePackage(t *testing.T) {
	g := openGrid(t, 8)
	cfg := sim.DefaultConfig()
	cfg.NumRobots = 1
	cfg.NumPackages = 1
	cfg.MaxTimeSteps = 200
	cfg.Seed = 9

	e, err := sim.New(g, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap, err := e.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	a := NewGreedy()
	a.Init(snap)
	for i := 0; i < cfg.MaxTimeSteps; i++ {
		res, err := e.Step(a.Actions(snap))
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		snap = res.Snapshot
		if res.Done {
			break
		}
	}

	m := e.Metrics()
	if m.Delivered != 1 {
		t.Fatalf("delivered %d of 1, metrics %+v", m.Delivered, m)
	}
	// A lone robot on an open 8x8 grid never needs the whole horizon.
	if m.Ticks >= cfg.MaxTimeSteps {
		t.Errorf("took %d ticks, want early termination", m.Ticks)
	}
}

func TestGreedy_ClaimsAreExclusive(t *testing.T) {
	g := openGrid(t, 6)
	a := NewGreedy()
	snap := core.Snapshot{
		Tick: 0, Grid: g,
		Robots: []core.RobotView{
			{Row: 1, Col: 1},
			{Row: 1, Col: 2},
		},
		Packages: []core.PackageView{
			pkgView(1, core.Cell{Row: 0, Col: 3}, core.Cell{Row: 5, Col: 5}, 0, 30),
			pkgView(2, core.Cell{Row: 0, Col: 4}, core.Cell{Row: 5, Col: 0}, 0, 30),
		},
	}
	a.Init(snap)
	a.Actions(snap)

	if len(a.claims) != 2 {
		t.Fatalf("claims = %v, want both robots assigned", a.claims)
	}
	if a.claims[0] == a.claims[1] {
		t.Errorf("robots share claim on package %d", a.claims[0])
	}
}

func TestGreedy_PickupAndDropOnArrival(t *testing.T) {
	g := openGrid(t, 4)
	a := NewGreedy()

	// Free robot standing on the package start picks it up.
	snap := core.Snapshot{
		Tick: 0, Grid: g,
		Robots:   []core.RobotView{{Row: 1, Col: 2}},
		Packages: []core.PackageView{pkgView(1, core.Cell{Row: 0, Col: 1}, core.Cell{Row: 3, Col: 3}, 0, 30)},
	}
	a.Init(snap)
	acts := a.Actions(snap)
	if acts[0].Pkg != core.PackagePickup || acts[0].Move != core.MoveStay {
		t.Fatalf("at start cell: %v, want stay+pickup", acts[0])
	}

	// Loaded robot standing on the target drops.
	acts = a.Actions(core.Snapshot{
		Tick: 1, Grid: g,
		Robots: []core.RobotView{{Row: 4, Col: 4, Carrying: 1}},
	})
	if acts[0].Pkg != core.PackageDrop || acts[0].Move != core.MoveStay {
		t.Fatalf("at target cell: %v, want stay+drop", acts[0])
	}
}

func TestGreedy_SteersTowardAssignment(t *testing.T) {
	g := openGrid(t, 4)
	a := NewGreedy()
	snap := core.Snapshot{
		Tick: 0, Grid: g,
		Robots:   []core.RobotView{{Row: 1, Col: 1}},
		Packages: []core.PackageView{pkgView(1, core.Cell{Row: 0, Col: 3}, core.Cell{Row: 3, Col: 0}, 0, 30)},
	}
	a.Init(snap)
	acts := a.Actions(snap)
	if acts[0].Move != core.MoveRight || acts[0].Pkg != core.PackageNone {
		t.Fatalf("toward (0,3): %v, want a move right", acts[0])
	}
}

func TestGreedy_SkipsUnreachablePackage(t *testing.T) {
	g := mustGrid(t, "0 1 0\n0 1 0\n0 1 0\n")
	a := NewGreedy()
	snap := core.Snapshot{
		Tick: 0, Grid: g,
		Robots:   []core.RobotView{{Row: 1, Col: 1}},
		Packages: []core.PackageView{pkgView(1, core.Cell{Row: 1, Col: 2}, core.Cell{Row: 2, Col: 2}, 0, 30)},
	}
	a.Init(snap)
	acts := a.Actions(snap)
	if acts[0] != (core.Action{}) {
		t.Fatalf("unreachable package drew %v, want idle", acts[0])
	}
	if len(a.claims) != 0 {
		t.Errorf("claims = %v, want none", a.claims)
	}
}

func TestRandom_SameSeedSameStream(t *testing.T) {
	g := openGrid(t, 5)
	snap := core.Snapshot{
		Tick: 0, Grid: g,
		Robots: []core.RobotView{{Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 3}},
	}

	a1 := NewRandom(5)
	a2 := NewRandom(5)
	for round := 0; round < 10; round++ {
		acts1 := a1.Actions(snap)
		acts2 := a2.Actions(snap)
		for i := range acts1 {
			if acts1[i] != acts2[i] {
				t.Fatalf("round %d robot %d: %v vs %v", round, i, acts1[i], acts2[i])
			}
			if acts1[i].Move < core.MoveStay || acts1[i].Move > core.MoveDown {
				t.Fatalf("move %v out of range", acts1[i].Move)
			}
			if acts1[i].Pkg < core.PackageNone || acts1[i].Pkg > core.PackageDrop {
				t.Fatalf("package action %v out of range", acts1[i].Pkg)
			}
		}
	}
}
