package draw

import (
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/vis/interact"
)

// DrawTrail draws a robot's recent path as a faded polyline through cells,
// ending at the current interpolated position (headX, headY) in cell units.
func DrawTrail(gtx layout.Context, cam *interact.Camera, cells []core.Cell, headX, headY float64, col color.NRGBA) {
	if len(cells) == 0 {
		return
	}
	col.A = 110

	var p clip.Path
	p.Begin(gtx.Ops)
	x, y, _ := cellCenter(cam, float64(cells[0].Col), float64(cells[0].Row))
	p.MoveTo(f32.Pt(x, y))
	for _, c := range cells[1:] {
		x, y, _ = cellCenter(cam, float64(c.Col), float64(c.Row))
		p.LineTo(f32.Pt(x, y))
	}
	hx, hy, _ := cellCenter(cam, headX, headY)
	p.LineTo(f32.Pt(hx, hy))

	width := float32(3) * cam.Zoom
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: p.End(), Width: width}.Op())
}
