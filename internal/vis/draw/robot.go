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

// robotPalette cycles by robot ID.
var robotPalette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 150, B: 100, A: 255},
	{R: 200, G: 100, B: 255, A: 255},
	{R: 120, G: 220, B: 120, A: 255},
	{R: 255, G: 120, B: 170, A: 255},
	{R: 235, G: 210, B: 100, A: 255},
}

// RobotColor returns the display color for a robot.
func RobotColor(id core.RobotID) color.NRGBA {
	return robotPalette[int(id)%len(robotPalette)]
}

// DrawRobot draws a robot body centered on (x, y) in cell units. Carrying
// robots get a parcel box on their back.
func DrawRobot(gtx layout.Context, cam *interact.Camera, x, y float64, id core.RobotID, carrying bool) {
	cx, cy, half := cellCenter(cam, x, y)
	body := half * 0.72

	rect := image.Rect(int(cx-body), int(cy-body), int(cx+body), int(cy+body))
	radius := int(body / 3)
	paint.FillShape(gtx.Ops, RobotColor(id), clip.UniformRRect(rect, radius).Op(gtx.Ops))

	if carrying {
		p := body * 0.45
		box := image.Rect(int(cx-p), int(cy-p), int(cx+p), int(cy+p))
		paint.FillShape(gtx.Ops, colorParcel, clip.Rect(box).Op())
	}
}
