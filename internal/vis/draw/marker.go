package draw

import (
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/RexSXP/marl-delivery/internal/vis/interact"
)

var (
	colorParcel     = color.NRGBA{R: 235, G: 185, B: 80, A: 255}
	colorParcelLate = color.NRGBA{R: 235, G: 105, B: 90, A: 255}
	colorTarget     = color.NRGBA{R: 90, G: 200, B: 180, A: 160}
	colorTargetHot  = color.NRGBA{R: 110, G: 235, B: 210, A: 255}
)

// DrawParcel draws a waiting package as a diamond on its start cell. Late
// parcels, whose deadline has already passed, are tinted red.
func DrawParcel(gtx layout.Context, cam *interact.Camera, row, col int, late bool) {
	cx, cy, half := cellCenter(cam, float64(col), float64(row))
	r := half * 0.55

	col4 := colorParcel
	if late {
		col4 = colorParcelLate
	}

	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(cx, cy-r))
	p.LineTo(f32.Pt(cx+r, cy))
	p.LineTo(f32.Pt(cx, cy+r))
	p.LineTo(f32.Pt(cx-r, cy))
	p.Close()
	paint.FillShape(gtx.Ops, col4, clip.Outline{Path: p.End()}.Op())
}

// DrawTarget draws a package destination as an outlined square. Active
// targets, whose package is on a robot, are drawn hot.
func DrawTarget(gtx layout.Context, cam *interact.Camera, row, col int, active bool) {
	cx, cy, half := cellCenter(cam, float64(col), float64(row))
	r := half * 0.62

	col4 := colorTarget
	width := float32(1.5) * cam.Zoom
	if active {
		col4 = colorTargetHot
		width = 2.5 * cam.Zoom
	}

	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(cx-r, cy-r))
	p.LineTo(f32.Pt(cx+r, cy-r))
	p.LineTo(f32.Pt(cx+r, cy+r))
	p.LineTo(f32.Pt(cx-r, cy+r))
	p.Close()
	paint.FillShape(gtx.Ops, col4, clip.Stroke{Path: p.End(), Width: width}.Op())
}
