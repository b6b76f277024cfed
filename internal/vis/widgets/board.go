// Package widgets provides the Gio UI widgets of the replay viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/vis/draw"
	"github.com/RexSXP/marl-delivery/internal/vis/interact"
	"github.com/RexSXP/marl-delivery/internal/vis/state"
)

const trailTicks = 6

// Board is the main playback view of the warehouse floor.
type Board struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewBoard creates the board view.
func NewBoard(st *state.State, camera *interact.Camera) *Board {
	return &Board{
		state:  st,
		camera: camera,
	}
}

// ResetView refits the camera to the board on the next frame.
func (b *Board) ResetView() {
	b.fitted = false
}

// Layout renders the board at the current playback position.
func (b *Board) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	if !b.fitted {
		g := b.state.Grid
		b.camera.Fit(
			float64(g.Cols())*draw.CellSize, float64(g.Rows())*draw.CellSize,
			float32(bounds.X), float32(bounds.Y), 40,
		)
		b.fitted = true
	}

	b.handlePointerEvents(gtx)

	draw.DrawBoard(gtx, b.state.Grid, b.camera)

	frame := b.state.CurrentFrame()
	for _, p := range frame.Packages {
		switch p.Status {
		case core.StatusWaiting:
			draw.DrawTarget(gtx, b.camera, p.TargetRow, p.TargetCol, false)
			draw.DrawParcel(gtx, b.camera, p.StartRow, p.StartCol, frame.Tick > p.Deadline)
		case core.StatusInTransit:
			draw.DrawTarget(gtx, b.camera, p.TargetRow, p.TargetCol, true)
		}
	}

	positions := b.state.RobotPositions()
	for i, pos := range positions {
		trail := b.state.Trail(i, trailTicks)
		if len(trail) > 1 {
			draw.DrawTrail(gtx, b.camera, trail, pos.X, pos.Y, draw.RobotColor(core.RobotID(i)))
		}
	}
	for i, pos := range positions {
		carrying := frame.Robots[i].Carrying != 0
		draw.DrawRobot(gtx, b.camera, pos.X, pos.Y, core.RobotID(i), carrying)
	}

	return layout.Dimensions{Size: bounds}
}

func (b *Board) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, b)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  b,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -120, Max: 120},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			b.camera.HandleEvent(pe)
		}
	}
}
