package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// randRange draws uniformly from [lo, hi). Callers guarantee lo < hi.
func randRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// generateScenario places robots and packages for a fresh episode.
//
// The draw order is fixed so a seed fully determines the scenario: robot
// cells first, then per package its start cell, target cell (redrawn until
// it differs from the start), deadline slack, and spawn tick. Robots are
// sampled without replacement from the free cells in row-major order;
// package cells come from the full free-cell set, so robot cells stay
// eligible and packages may share cells with each other.
func generateScenario(g *core.Grid, cfg Config, rng *rand.Rand) ([]*core.Robot, []*core.Package, error) {
	candidates := g.FreeCells()
	if len(candidates) < cfg.NumRobots {
		return nil, nil, fmt.Errorf("%w: %d robots on %d free cells",
			ErrNotEnoughFreeCells, cfg.NumRobots, len(candidates))
	}
	robots := make([]*core.Robot, cfg.NumRobots)
	for i := range robots {
		k := rng.Intn(len(candidates))
		robots[i] = &core.Robot{ID: core.RobotID(i), Position: candidates[k]}
		candidates = append(candidates[:k], candidates[k+1:]...)
	}

	free := g.FreeCells()
	if cfg.NumPackages > 0 && len(free) < 2 {
		return nil, nil, fmt.Errorf("%w: packages need two distinct free cells, have %d",
			ErrNotEnoughFreeCells, len(free))
	}

	type draft struct {
		start, target   core.Cell
		spawn, deadline int
	}
	n := g.Rows()
	drafts := make([]draft, cfg.NumPackages)
	for i := range drafts {
		start := free[rng.Intn(len(free))]
		target := start
		for target == start {
			target = free[rng.Intn(len(free))]
		}
		slack := 10 + randRange(rng, n/2, 3*n)
		spawn := 0
		if i >= zeroSpawnQuota(cfg.NumRobots) {
			spawn = randRange(rng, 1, cfg.MaxTimeSteps)
		}
		drafts[i] = draft{start: start, target: target, spawn: spawn, deadline: spawn + slack}
	}

	// Stable sort keeps generation order between equal spawn ticks; IDs
	// then run 1..P in spawn order.
	sort.SliceStable(drafts, func(a, b int) bool { return drafts[a].spawn < drafts[b].spawn })
	packages := make([]*core.Package, len(drafts))
	for i, d := range drafts {
		packages[i] = &core.Package{
			ID:        core.PackageID(i + 1),
			Start:     d.start,
			Target:    d.target,
			SpawnTime: d.spawn,
			Deadline:  d.deadline,
			Status:    core.StatusPending,
		}
	}
	return robots, packages, nil
}
