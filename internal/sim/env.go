// Package sim implements the discrete-time delivery simulation:
// scenario generation, movement conflict resolution, the package
// lifecycle, reward accounting and episode termination.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// Sentinel errors for the environment contract.
var (
	// ErrActionCount is returned by Step when the action vector length
	// does not match the fleet size. The world is left untouched.
	ErrActionCount = errors.New("action count does not match robot count")

	// ErrEpisodeOver is returned by Step after the episode has ended.
	ErrEpisodeOver = errors.New("episode is over")

	// ErrNotEnoughFreeCells is returned by Reset when the grid cannot
	// host the configured fleet or workload.
	ErrNotEnoughFreeCells = errors.New("not enough free cells")
)

// EpisodeInfo summarizes a finished episode.
type EpisodeInfo struct {
	TotalReward float64
	TotalSteps  int
}

// StepResult bundles everything a Step call reports. Reward is the reward
// earned by this step alone; Info is non-nil only on the terminating step.
type StepResult struct {
	Snapshot core.Snapshot
	Reward   float64
	Done     bool
	Info     *EpisodeInfo
}

// Environment is the delivery world: a static grid, a robot fleet, and a
// set of timed packages. It is not safe for concurrent use; drive it from
// a single goroutine.
type Environment struct {
	grid *core.Grid
	cfg  Config
	rng  *rand.Rand

	tick        int
	totalReward float64
	done        bool

	robots   []*core.Robot
	packages []*core.Package // Sorted by ID; slice index is ID-1

	deliveredOnTime int
	deliveredLate   int
}

// New builds an environment. Call Reset to generate the first scenario.
func New(grid *core.Grid, cfg Config) (*Environment, error) {
	if grid == nil {
		return nil, errors.New("nil grid")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Environment{
		grid: grid,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Reset generates a fresh scenario and returns the tick-0 observation.
// The RNG stream runs on across resets: the first episode after New is
// fully determined by the seed, later episodes by the draws before them.
func (e *Environment) Reset() (core.Snapshot, error) {
	robots, packages, err := generateScenario(e.grid, e.cfg, e.rng)
	if err != nil {
		return core.Snapshot{}, err
	}
	e.robots = robots
	e.packages = packages
	e.tick = 0
	e.totalReward = 0
	e.done = false
	e.deliveredOnTime = 0
	e.deliveredLate = 0
	return e.observe(), nil
}

// Step applies one action per robot and advances the world a single tick:
// movement resolution, then pickups and drops in robot index order, then
// the tick increment, termination check and the next observation.
func (e *Environment) Step(actions []core.Action) (StepResult, error) {
	if e.robots == nil {
		return StepResult{}, errors.New("step before reset")
	}
	if e.done {
		return StepResult{}, ErrEpisodeOver
	}
	if len(actions) != len(e.robots) {
		return StepResult{}, fmt.Errorf("%w: got %d, want %d",
			ErrActionCount, len(actions), len(e.robots))
	}

	var reward float64

	positions := make([]core.Cell, len(e.robots))
	proposed := make([]core.Cell, len(e.robots))
	for i, r := range e.robots {
		positions[i] = r.Position
		proposed[i] = propose(e.grid, r.Position, actions[i].Move)
	}
	final, _ := resolveMoves(positions, proposed)
	for i, r := range e.robots {
		// Cost only for directional actions that actually left the cell.
		if actions[i].Move != core.MoveStay && final[i] != r.Position {
			reward += e.cfg.MoveCost
		}
		r.Position = final[i]
	}

	// Robot 0's package action settles before robot 1's is considered.
	for i, r := range e.robots {
		switch actions[i].Pkg {
		case core.PackagePickup:
			e.pickup(r)
		case core.PackageDrop:
			reward += e.drop(r)
		}
	}

	e.tick++
	e.totalReward += reward
	e.done = e.tick == e.cfg.MaxTimeSteps || e.allDelivered()

	res := StepResult{
		Snapshot: e.observe(),
		Reward:   reward,
		Done:     e.done,
	}
	if e.done {
		res.Info = &EpisodeInfo{TotalReward: e.totalReward, TotalSteps: e.tick}
	}
	return res, nil
}

// pickup hands the robot the lowest-ID waiting package on its cell, if any.
func (e *Environment) pickup(r *core.Robot) {
	if r.IsCarrying() {
		return
	}
	for _, p := range e.packages {
		if p.Status == core.StatusWaiting && p.Start == r.Position && p.SpawnTime <= e.tick {
			p.Status = core.StatusInTransit
			r.Carrying = p.ID
			return
		}
	}
}

// drop releases the carried package if the robot stands on its target,
// returning the delivery reward earned.
func (e *Environment) drop(r *core.Robot) float64 {
	if !r.IsCarrying() {
		return 0
	}
	p := e.packages[r.Carrying-1]
	if r.Position != p.Target {
		return 0
	}
	p.Status = core.StatusDelivered
	r.Carrying = 0
	if e.tick <= p.Deadline {
		e.deliveredOnTime++
		return e.cfg.DeliveryReward
	}
	e.deliveredLate++
	return e.cfg.DelayReward
}

// observe reveals packages spawning at the current tick, then builds the
// observation: full fleet, newly revealed packages only.
func (e *Environment) observe() core.Snapshot {
	var revealed []core.PackageView
	for _, p := range e.packages {
		if p.Status == core.StatusPending && p.SpawnTime == e.tick {
			p.Status = core.StatusWaiting
			revealed = append(revealed, p.View())
		}
	}
	robots := make([]core.RobotView, len(e.robots))
	for i, r := range e.robots {
		robots[i] = r.View()
	}
	return core.Snapshot{
		Tick:     e.tick,
		Grid:     e.grid,
		Robots:   robots,
		Packages: revealed,
	}
}

func (e *Environment) allDelivered() bool {
	for _, p := range e.packages {
		if p.Status != core.StatusDelivered {
			return false
		}
	}
	return true
}

// Grid returns the obstacle map the environment runs on.
func (e *Environment) Grid() *core.Grid { return e.grid }

// Config returns the environment parameters.
func (e *Environment) Config() Config { return e.cfg }

// Tick returns the current tick.
func (e *Environment) Tick() int { return e.tick }

// Done reports whether the episode has ended.
func (e *Environment) Done() bool { return e.done }

// TotalReward returns the reward accumulated so far.
func (e *Environment) TotalReward() float64 { return e.totalReward }
