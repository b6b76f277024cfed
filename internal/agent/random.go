package agent

import (
	"math/rand"

	"github.com/RexSXP/marl-delivery/internal/core"
)

// Random issues uniformly random actions from a private seeded stream.
// It is the floor every other policy is measured against.
type Random struct {
	rng *rand.Rand
}

// NewRandom builds a random policy with its own RNG.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (a *Random) Init(core.Snapshot) {}

func (a *Random) Actions(snap core.Snapshot) []core.Action {
	acts := make([]core.Action, len(snap.Robots))
	for i := range acts {
		acts[i] = core.Action{
			Move: core.MoveAction(a.rng.Intn(5)),
			Pkg:  core.PackageAction(a.rng.Intn(3)),
		}
	}
	return acts
}

func (a *Random) Name() string { return "random" }
