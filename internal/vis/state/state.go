// Package state holds the replay viewer's episode and playback state.
package state

import (
	"fmt"
	"math"
	"strings"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/replay"
	"github.com/RexSXP/marl-delivery/internal/sim"
)

// WorldPos is a continuous board position in cell units. X grows with
// columns, Y with rows.
type WorldPos struct {
	X, Y float64
}

// State is everything the viewer knows about one loaded episode.
type State struct {
	Episode  *replay.Episode
	Grid     *core.Grid
	Playback *Playback

	// frames[k] is the recorded state after k steps; frames[0] is the
	// state right after reset.
	frames []sim.StateDump
}

// NewState prepares a loaded episode for playback.
func NewState(ep *replay.Episode) (*State, error) {
	g, err := core.ParseMap(strings.NewReader(ep.Header.Grid))
	if err != nil {
		return nil, fmt.Errorf("replay grid: %w", err)
	}
	frames := make([]sim.StateDump, 0, len(ep.Ticks)+1)
	frames = append(frames, ep.Header.Start)
	for _, rec := range ep.Ticks {
		frames = append(frames, rec.State)
	}
	return &State{
		Episode:  ep,
		Grid:     g,
		Playback: NewPlayback(float64(len(frames) - 1)),
		frames:   frames,
	}, nil
}

// Frame returns the recorded state after k steps, clamped to the episode.
func (s *State) Frame(k int) sim.StateDump {
	if k < 0 {
		k = 0
	}
	if k > len(s.frames)-1 {
		k = len(s.frames) - 1
	}
	return s.frames[k]
}

// CurrentFrame is the frame at the whole-tick part of the playback position.
func (s *State) CurrentFrame() sim.StateDump {
	return s.Frame(int(math.Floor(s.Playback.Tick)))
}

// RobotPositions returns the fleet's positions at the playback position,
// linearly interpolated between the two bounding frames.
func (s *State) RobotPositions() []WorldPos {
	t := s.Playback.Tick
	k := int(math.Floor(t))
	alpha := t - float64(k)
	a := s.Frame(k)
	b := s.Frame(k + 1)

	out := make([]WorldPos, len(a.Robots))
	for i := range a.Robots {
		ar, br := a.Robots[i], b.Robots[i]
		out[i] = WorldPos{
			X: float64(ar.Col) + alpha*float64(br.Col-ar.Col),
			Y: float64(ar.Row) + alpha*float64(br.Row-ar.Row),
		}
	}
	return out
}

// Trail returns the robot's recorded cells over the last n ticks, oldest
// first, ending at the current whole tick.
func (s *State) Trail(robot, n int) []core.Cell {
	end := int(math.Floor(s.Playback.Tick))
	start := end - n
	if start < 0 {
		start = 0
	}
	var cells []core.Cell
	for k := start; k <= end; k++ {
		r := s.Frame(k).Robots[robot]
		c := core.Cell{Row: r.Row, Col: r.Col}
		if len(cells) > 0 && cells[len(cells)-1] == c {
			continue
		}
		cells = append(cells, c)
	}
	return cells
}

// Delivered counts delivered packages in the current frame.
func (s *State) Delivered() (done, total int) {
	f := s.CurrentFrame()
	for _, p := range f.Packages {
		if p.Status == core.StatusDelivered {
			done++
		}
	}
	return done, len(f.Packages)
}

// CurrentReward is the cumulative reward at the current frame.
func (s *State) CurrentReward() float64 {
	return s.CurrentFrame().TotalReward
}
