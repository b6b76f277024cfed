// Package interact implements viewport interaction for the replay viewer.
package interact

import "gioui.org/io/pointer"

const (
	minZoom = 0.2
	maxZoom = 12
)

// Camera maps world pixels to screen pixels with pan and zoom.
type Camera struct {
	OffsetX float32
	OffsetY float32
	Zoom    float32

	panning bool
	lastX   float32
	lastY   float32
}

// NewCamera creates a camera at the origin with no zoom.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float32) {
	sx = float32(wx)*c.Zoom + c.OffsetX
	sy = float32(wy)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float64) {
	wx = float64((sx - c.OffsetX) / c.Zoom)
	wy = float64((sy - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent pans on secondary or middle drag and zooms on scroll,
// keeping the world point under the cursor fixed.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.panning = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.panning {
			c.OffsetX += ev.Position.X - c.lastX
			c.OffsetY += ev.Position.Y - c.lastY
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release, pointer.Cancel:
		c.panning = false

	case pointer.Scroll:
		if ev.Scroll.Y == 0 {
			return
		}
		factor := float32(1.1)
		if ev.Scroll.Y > 0 {
			factor = 1 / factor
		}
		c.zoomAt(factor, ev.Position.X, ev.Position.Y)
	}
}

func (c *Camera) zoomAt(factor, cx, cy float32) {
	wx, wy := c.ScreenToWorld(cx, cy)
	c.Zoom = clampZoom(c.Zoom * factor)
	sx, sy := c.WorldToScreen(wx, wy)
	c.OffsetX += cx - sx
	c.OffsetY += cy - sy
}

// Fit centers the world rectangle (0,0)-(worldW,worldH) in the viewport
// with the given screen margin.
func (c *Camera) Fit(worldW, worldH float64, screenW, screenH, margin float32) {
	if worldW <= 0 || worldH <= 0 || screenW <= 0 || screenH <= 0 {
		return
	}
	zx := (screenW - 2*margin) / float32(worldW)
	zy := (screenH - 2*margin) / float32(worldH)
	z := zx
	if zy < z {
		z = zy
	}
	c.Zoom = clampZoom(z)
	c.OffsetX = screenW/2 - float32(worldW/2)*c.Zoom
	c.OffsetY = screenH/2 - float32(worldH/2)*c.Zoom
}

func clampZoom(z float32) float32 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}
