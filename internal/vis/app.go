// Package vis implements the Gio replay viewer for recorded delivery
// episodes.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/RexSXP/marl-delivery/internal/replay"
	"github.com/RexSXP/marl-delivery/internal/vis/interact"
	"github.com/RexSXP/marl-delivery/internal/vis/state"
	"github.com/RexSXP/marl-delivery/internal/vis/widgets"
)

// App is the replay viewer application.
type App struct {
	state    *state.State
	theme    *material.Theme
	board    *widgets.Board
	timeline *widgets.Timeline
	toolbar  *widgets.Toolbar
	camera   *interact.Camera
}

// NewApp builds the viewer for a loaded episode.
func NewApp(ep *replay.Episode) (*App, error) {
	st, err := state.NewState(ep)
	if err != nil {
		return nil, err
	}
	camera := interact.NewCamera()

	return &App{
		state:    st,
		theme:    material.NewTheme(),
		board:    widgets.NewBoard(st, camera),
		timeline: widgets.NewTimeline(st),
		toolbar:  widgets.NewToolbar(st),
		camera:   camera,
	}, nil
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops

	// Event filter tag for keyboard input
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			// Request continuous redraws during playback
			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameLeftArrow:
		a.state.Playback.StepBack()
	case key.NameRightArrow:
		a.state.Playback.StepForward()
	case key.NameHome:
		a.state.Playback.Rewind()
	case "R":
		a.board.ResetView()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.board.Layout(gtx, a.theme)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
