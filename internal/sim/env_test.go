package sim

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// seedEpisode installs a handcrafted scenario and reveals tick-0 packages,
// bypassing the random generator.
func seedEpisode(e *Environment, robots []*core.Robot, packages []*core.Package) core.Snapshot {
	e.robots = robots
	e.packages = packages
	e.tick = 0
	e.totalReward = 0
	e.done = false
	e.deliveredOnTime = 0
	e.deliveredLate = 0
	return e.observe()
}

func newCorridorEnv(t *testing.T, cfg Config) *Environment {
	t.Helper()
	e, err := New(mustGrid(t, "0 0 0 0\n"), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStep_PickupAndDeliverOnTime(t *testing.T) {
	cfg := DefaultConfig()
	e := newCorridorEnv(t, cfg)
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 2}, SpawnTime: 0, Deadline: 40}},
	)

	res, err := e.Step([]core.Action{{Move: core.MoveRight, Pkg: core.PackagePickup}})
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if got := res.Snapshot.Robots[0]; got.Carrying != 1 || got.Row != 1 || got.Col != 2 {
		t.Fatalf("after pickup: %+v, want carrying 1 at (1,2)", got)
	}
	if !almostEqual(res.Reward, cfg.MoveCost) {
		t.Errorf("step 1 reward = %v, want %v", res.Reward, cfg.MoveCost)
	}
	if res.Done {
		t.Fatal("done after step 1")
	}

	res, err = e.Step([]core.Action{{Move: core.MoveRight, Pkg: core.PackageDrop}})
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if got := res.Snapshot.Robots[0]; got.Carrying != 0 {
		t.Errorf("still carrying %d after delivery", got.Carrying)
	}
	if !almostEqual(res.Reward, cfg.MoveCost+cfg.DeliveryReward) {
		t.Errorf("step 2 reward = %v, want %v", res.Reward, cfg.MoveCost+cfg.DeliveryReward)
	}
	if !res.Done {
		t.Fatal("not done after the last delivery")
	}
	if res.Info == nil {
		t.Fatal("no episode info on the terminating step")
	}
	wantTotal := 2*cfg.MoveCost + cfg.DeliveryReward
	if !almostEqual(res.Info.TotalReward, wantTotal) || res.Info.TotalSteps != 2 {
		t.Errorf("info = %+v, want total %v over 2 steps", res.Info, wantTotal)
	}
}

func TestStep_LateDeliveryStillRewarded(t *testing.T) {
	cfg := DefaultConfig()
	e := newCorridorEnv(t, cfg)
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 1}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 2}, SpawnTime: 0, Deadline: 0}},
	)

	steps := []struct {
		action core.Action
		reward float64
	}{
		{core.Action{Move: core.MoveStay, Pkg: core.PackagePickup}, 0},             // tick 0: on time would still be possible
		{core.Action{Move: core.MoveRight, Pkg: core.PackageNone}, cfg.MoveCost},   // tick 1
		{core.Action{Move: core.MoveStay, Pkg: core.PackageDrop}, cfg.DelayReward}, // tick 2 > deadline 0
	}
	for i, s := range steps {
		res, err := e.Step([]core.Action{s.action})
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if !almostEqual(res.Reward, s.reward) {
			t.Errorf("step %d reward = %v, want %v", i+1, res.Reward, s.reward)
		}
	}
	m := e.Metrics()
	if m.DeliveredLate != 1 || m.DeliveredOnTime != 0 {
		t.Errorf("metrics = %+v, want one late delivery", m)
	}
}

func TestStep_DeadlineTickCountsAsOnTime(t *testing.T) {
	cfg := DefaultConfig()
	e := newCorridorEnv(t, cfg)
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 1}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 2}, SpawnTime: 0, Deadline: 2}},
	)

	acts := []core.Action{
		{Move: core.MoveStay, Pkg: core.PackagePickup},
		{Move: core.MoveRight, Pkg: core.PackageNone},
		{Move: core.MoveStay, Pkg: core.PackageDrop}, // executes on tick 2 == deadline
	}
	var last StepResult
	for i, a := range acts {
		res, err := e.Step([]core.Action{a})
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		last = res
	}
	if !almostEqual(last.Reward, cfg.DeliveryReward) {
		t.Errorf("delivery on the deadline tick rewarded %v, want %v", last.Reward, cfg.DeliveryReward)
	}
	if m := e.Metrics(); m.DeliveredOnTime != 1 {
		t.Errorf("metrics = %+v, want one on-time delivery", m)
	}
}

func TestStep_PickupTakesLowestID(t *testing.T) {
	e := newCorridorEnv(t, DefaultConfig())
	shared := core.Cell{Row: 0, Col: 1}
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: shared}},
		[]*core.Package{
			{ID: 1, Start: shared, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30},
			{ID: 2, Start: shared, Target: core.Cell{Row: 0, Col: 2}, SpawnTime: 0, Deadline: 30},
		},
	)

	res, err := e.Step([]core.Action{{Move: core.MoveStay, Pkg: core.PackagePickup}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := res.Snapshot.Robots[0].Carrying; got != 1 {
		t.Errorf("picked package %d, want 1", got)
	}
	if e.packages[1].Status != core.StatusWaiting {
		t.Errorf("package 2 status %v, want waiting", e.packages[1].Status)
	}
}

func TestStep_PickupNeedsEmptyHands(t *testing.T) {
	e := newCorridorEnv(t, DefaultConfig())
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 1}, Carrying: 1}},
		[]*core.Package{
			{ID: 1, Start: core.Cell{Row: 0, Col: 0}, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30, Status: core.StatusInTransit},
			{ID: 2, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 2}, SpawnTime: 0, Deadline: 30},
		},
	)

	res, err := e.Step([]core.Action{{Move: core.MoveStay, Pkg: core.PackagePickup}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := res.Snapshot.Robots[0].Carrying; got != 1 {
		t.Errorf("carrying %d, want the original package 1", got)
	}
	if e.packages[1].Status != core.StatusWaiting {
		t.Errorf("package 2 status %v, want still waiting", e.packages[1].Status)
	}
}

func TestStep_DropOnlyAtTarget(t *testing.T) {
	cfg := DefaultConfig()
	e := newCorridorEnv(t, cfg)
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 1}, Carrying: 1}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 0}, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30, Status: core.StatusInTransit}},
	)

	res, err := e.Step([]core.Action{{Move: core.MoveStay, Pkg: core.PackageDrop}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := res.Snapshot.Robots[0].Carrying; got != 1 {
		t.Errorf("carrying %d after off-target drop, want 1", got)
	}
	if !almostEqual(res.Reward, 0) {
		t.Errorf("off-target drop rewarded %v", res.Reward)
	}
	if e.packages[0].Status != core.StatusInTransit {
		t.Errorf("status %v, want in_transit", e.packages[0].Status)
	}
}

func TestStep_MoveCostOnlyWhenCellChanges(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(mustGrid(t, "0 1\n0 0\n"), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedEpisode(e, []*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}}, nil)

	// Driving into the obstacle collapses to a stay: no cost.
	res, err := e.Step([]core.Action{{Move: core.MoveRight}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !almostEqual(res.Reward, 0) {
		t.Errorf("blocked move cost %v, want 0", res.Reward)
	}
}

func TestStep_BumpedRobotPaysNothing(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(openGrid(t, 3), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedEpisode(e, []*core.Robot{
		{ID: 0, Position: core.Cell{Row: 0, Col: 0}},
		{ID: 1, Position: core.Cell{Row: 0, Col: 2}},
	}, nil)

	// Both aim for (0,1); only the winner is charged.
	res, err := e.Step([]core.Action{
		{Move: core.MoveRight},
		{Move: core.MoveLeft},
	})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !almostEqual(res.Reward, cfg.MoveCost) {
		t.Errorf("reward = %v, want a single move cost %v", res.Reward, cfg.MoveCost)
	}
}

func TestStep_ActionCountMismatchLeavesStateUntouched(t *testing.T) {
	e := newCorridorEnv(t, DefaultConfig())
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}, {ID: 1, Position: core.Cell{Row: 0, Col: 2}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30}},
	)
	before := e.Dump()

	_, err := e.Step([]core.Action{{Move: core.MoveRight}})
	if !errors.Is(err, ErrActionCount) {
		t.Fatalf("err = %v, want ErrActionCount", err)
	}
	if !reflect.DeepEqual(before, e.Dump()) {
		t.Error("state mutated by a rejected step")
	}
}

func TestStep_AfterDone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTimeSteps = 1
	cfg.NumPackages = 0
	e := newCorridorEnv(t, cfg)
	seedEpisode(e, []*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}}, nil)

	res, err := e.Step([]core.Action{{}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.Done {
		t.Fatal("not done at the horizon")
	}
	if _, err := e.Step([]core.Action{{}}); !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("err = %v, want ErrEpisodeOver", err)
	}
}

func TestStep_HorizonTermination(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTimeSteps = 3
	e := newCorridorEnv(t, cfg)
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 2}, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30}},
	)

	for i := 0; i < 3; i++ {
		res, err := e.Step([]core.Action{{}})
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		wantDone := i == 2
		if res.Done != wantDone {
			t.Fatalf("step %d done = %v, want %v", i+1, res.Done, wantDone)
		}
		if wantDone && (res.Info == nil || res.Info.TotalSteps != 3) {
			t.Fatalf("terminating info = %+v, want 3 steps", res.Info)
		}
	}
}

func TestObserve_ProgressiveReveal(t *testing.T) {
	e := newCorridorEnv(t, DefaultConfig())
	snap := seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 0}}},
		[]*core.Package{
			{ID: 1, Start: core.Cell{Row: 0, Col: 1}, Target: core.Cell{Row: 0, Col: 3}, SpawnTime: 0, Deadline: 30},
			{ID: 2, Start: core.Cell{Row: 0, Col: 2}, Target: core.Cell{Row: 0, Col: 0}, SpawnTime: 2, Deadline: 32},
		},
	)

	if len(snap.Packages) != 1 || snap.Packages[0].ID != 1 {
		t.Fatalf("tick 0 reveals %+v, want package 1 only", snap.Packages)
	}

	res, err := e.Step([]core.Action{{}}) // tick 1: nothing new
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(res.Snapshot.Packages) != 0 {
		t.Fatalf("tick 1 reveals %+v, want none", res.Snapshot.Packages)
	}
	if e.packages[1].Status != core.StatusPending {
		t.Fatalf("package 2 status %v before its spawn tick", e.packages[1].Status)
	}

	res, err = e.Step([]core.Action{{}}) // tick 2: package 2 appears
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(res.Snapshot.Packages) != 1 || res.Snapshot.Packages[0].ID != 2 {
		t.Fatalf("tick 2 reveals %+v, want package 2", res.Snapshot.Packages)
	}
	if e.packages[1].Status != core.StatusWaiting {
		t.Fatalf("package 2 status %v, want waiting", e.packages[1].Status)
	}

	res, err = e.Step([]core.Action{{}}) // tick 3: revealed once only
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(res.Snapshot.Packages) != 0 {
		t.Fatalf("tick 3 reveals %+v, want none", res.Snapshot.Packages)
	}
}

func TestStep_PickupBeforeSpawnFails(t *testing.T) {
	e := newCorridorEnv(t, DefaultConfig())
	seedEpisode(e,
		[]*core.Robot{{ID: 0, Position: core.Cell{Row: 0, Col: 2}}},
		[]*core.Package{{ID: 1, Start: core.Cell{Row: 0, Col: 2}, Target: core.Cell{Row: 0, Col: 0}, SpawnTime: 3, Deadline: 33}},
	)

	res, err := e.Step([]core.Action{{Move: core.MoveStay, Pkg: core.PackagePickup}})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := res.Snapshot.Robots[0].Carrying; got != 0 {
		t.Errorf("picked up a pending package: carrying %d", got)
	}
}

func TestReset_GeneratesAndReveals(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(openGrid(t, 10), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap, err := e.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if snap.Tick != 0 {
		t.Errorf("tick = %d, want 0", snap.Tick)
	}
	if len(snap.Robots) != cfg.NumRobots {
		t.Errorf("robots = %d, want %d", len(snap.Robots), cfg.NumRobots)
	}
	// min(5, 20) packages spawn at tick 0 and are revealed immediately.
	if len(snap.Packages) != 5 {
		t.Errorf("tick-0 reveals = %d, want 5", len(snap.Packages))
	}
	for _, pv := range snap.Packages {
		if pv.SpawnTime != 0 {
			t.Errorf("revealed package %d has spawn %d", pv.ID, pv.SpawnTime)
		}
		if pv.StartRow < 1 || pv.StartRow > 10 || pv.StartCol < 1 || pv.StartCol > 10 {
			t.Errorf("package %d start (%d,%d) outside 1-based bounds", pv.ID, pv.StartRow, pv.StartCol)
		}
	}
	for _, rv := range snap.Robots {
		if rv.Row < 1 || rv.Row > 10 || rv.Col < 1 || rv.Col > 10 {
			t.Errorf("robot view (%d,%d) outside 1-based bounds", rv.Row, rv.Col)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero horizon", func(c *Config) { c.MaxTimeSteps = 0 }, false},
		{"no robots", func(c *Config) { c.NumRobots = 0 }, false},
		{"negative packages", func(c *Config) { c.NumPackages = -1 }, false},
		{"horizon too short for random spawns", func(c *Config) { c.MaxTimeSteps = 1 }, false},
		{"short horizon within quota", func(c *Config) { c.MaxTimeSteps = 1; c.NumPackages = 5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate passed, want error")
			}
		})
	}
}
