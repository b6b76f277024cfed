package state

import (
	"math"
	"time"
)

// Playback drives animation over a recorded episode. Position is measured
// in ticks; fractional values interpolate between two recorded frames.
type Playback struct {
	Tick    float64 // Current playback position in ticks
	MaxTick float64 // Last recorded tick
	Speed   float64 // Playback speed in ticks per second
	Playing bool
	last    time.Time
}

// NewPlayback creates a paused playback over [0, maxTick].
func NewPlayback(maxTick float64) *Playback {
	return &Playback{
		MaxTick: maxTick,
		Speed:   4,
		last:    time.Now(),
	}
}

// TogglePlay starts or stops playback. Starting at the end rewinds first.
func (p *Playback) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.last = time.Now()
		if p.Tick >= p.MaxTick {
			p.Tick = 0
		}
	}
}

// Pause stops playback.
func (p *Playback) Pause() {
	p.Playing = false
}

// Rewind pauses and returns to the first tick.
func (p *Playback) Rewind() {
	p.Tick = 0
	p.Playing = false
}

// Advance moves the position by the wall-clock time elapsed since the last
// call, scaled by Speed. Playback pauses at the final tick.
func (p *Playback) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	p.Tick += now.Sub(p.last).Seconds() * p.Speed
	p.last = now
	if p.Tick >= p.MaxTick {
		p.Tick = p.MaxTick
		p.Playing = false
	}
}

// Seek jumps to an arbitrary position, clamped to the episode.
func (p *Playback) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if t > p.MaxTick {
		t = p.MaxTick
	}
	p.Tick = t
}

// StepForward pauses and snaps to the next whole tick.
func (p *Playback) StepForward() {
	p.Pause()
	p.Seek(math.Floor(p.Tick) + 1)
}

// StepBack pauses and snaps to the previous whole tick.
func (p *Playback) StepBack() {
	p.Pause()
	p.Seek(math.Ceil(p.Tick) - 1)
}

// SetSpeed clamps the playback speed to a usable range.
func (p *Playback) SetSpeed(speed float64) {
	if speed < 0.5 {
		speed = 0.5
	}
	if speed > 64 {
		speed = 64
	}
	p.Speed = speed
}

// Progress is the playback position as a 0-1 fraction.
func (p *Playback) Progress() float64 {
	if p.MaxTick <= 0 {
		return 0
	}
	return p.Tick / p.MaxTick
}
