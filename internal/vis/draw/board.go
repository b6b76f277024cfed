// Package draw renders the delivery board with Gio paint operations.
package draw

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/RexSXP/marl-delivery/internal/core"
	"github.com/RexSXP/marl-delivery/internal/vis/interact"
)

// CellSize is the world-pixel edge of one grid cell at zoom 1.
const CellSize = 50.0

var (
	colorFloor    = color.NRGBA{R: 36, G: 40, B: 46, A: 255}
	colorWall     = color.NRGBA{R: 74, G: 80, B: 90, A: 255}
	colorGridLine = color.NRGBA{R: 48, G: 53, B: 60, A: 255}
)

// cellRect returns the screen rectangle covering the given cell.
func cellRect(cam *interact.Camera, row, col int) image.Rectangle {
	x0, y0 := cam.WorldToScreen(float64(col)*CellSize, float64(row)*CellSize)
	x1, y1 := cam.WorldToScreen(float64(col+1)*CellSize, float64(row+1)*CellSize)
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

// cellCenter returns the screen center of the cell position (x, y) given
// in cell units, plus half a cell edge in screen pixels.
func cellCenter(cam *interact.Camera, x, y float64) (cx, cy, half float32) {
	cx, cy = cam.WorldToScreen((x+0.5)*CellSize, (y+0.5)*CellSize)
	half = float32(CellSize/2) * cam.Zoom
	return
}

// DrawBoard fills the floor, the obstacle cells, and the grid lines.
func DrawBoard(gtx layout.Context, g *core.Grid, cam *interact.Camera) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(float64(g.Cols())*CellSize, float64(g.Rows())*CellSize)
	paint.FillShape(gtx.Ops, colorFloor, clip.Rect(image.Rect(int(x0), int(y0), int(x1), int(y1))).Op())

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if !g.IsFree(core.Cell{Row: r, Col: c}) {
				paint.FillShape(gtx.Ops, colorWall, clip.Rect(cellRect(cam, r, c)).Op())
			}
		}
	}

	for r := 0; r <= g.Rows(); r++ {
		sx0, sy := cam.WorldToScreen(0, float64(r)*CellSize)
		sx1, _ := cam.WorldToScreen(float64(g.Cols())*CellSize, float64(r)*CellSize)
		paint.FillShape(gtx.Ops, colorGridLine, clip.Rect(image.Rect(int(sx0), int(sy), int(sx1), int(sy)+1)).Op())
	}
	for c := 0; c <= g.Cols(); c++ {
		sx, sy0 := cam.WorldToScreen(float64(c)*CellSize, 0)
		_, sy1 := cam.WorldToScreen(float64(c)*CellSize, float64(g.Rows())*CellSize)
		paint.FillShape(gtx.Ops, colorGridLine, clip.Rect(image.Rect(int(sx), int(sy0), int(sx)+1, int(sy1))).Op())
	}
}
