// Package agent implements the policies that drive the delivery fleet.
package agent

import (
	"fmt"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// Agent maps observations to one action per robot each tick. Agents see
// only snapshots; newly revealed packages arrive exactly once, so stateful
// policies keep their own books.
type Agent interface {
	// Init primes the agent with the reset observation.
	Init(snap core.Snapshot)
	// Actions returns one action per robot for the observed tick.
	Actions(snap core.Snapshot) []core.Action
	// Name identifies the policy in logs and result tables.
	Name() string
}

// New returns the named policy. Known names: "greedy", "planner",
// "random".
func New(name string, seed int64) (Agent, error) {
	switch name {
	case "greedy":
		return NewGreedy(), nil
	case "planner":
		return NewPlanner(), nil
	case "random":
		return NewRandom(seed), nil
	}
	return nil, fmt.Errorf("unknown agent %q", name)
}
