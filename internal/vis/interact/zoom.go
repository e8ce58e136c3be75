// Package interact handles user interactions like pan, zoom, and selection.
package interact

import (
	"math"

	"gioui.org/io/pointer"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// CellSize is the side of one grid cell in world units.
const CellSize = 24.0

const (
	minZoom = 0.1
	maxZoom = 10
)

// Camera manages view transformation (pan and zoom).
type Camera struct {
	// View transform
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // Zoom level (1.0 = 100%)

	// Interaction state
	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset resets camera to default view.
func (c *Camera) Reset() {
	c.OffsetX = 0
	c.OffsetY = 0
	c.Zoom = 1.0
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// CellOrigin returns the screen position of the top-left corner of p.
func (c *Camera) CellOrigin(p core.Position) (x, y float32) {
	return c.WorldToScreen(float64(p.Col)*CellSize, float64(p.Row)*CellSize)
}

// CellCenter returns the screen position of the centre of p.
func (c *Camera) CellCenter(p core.Position) (x, y float32) {
	return c.WorldToScreen((float64(p.Col)+0.5)*CellSize, (float64(p.Row)+0.5)*CellSize)
}

// CellAt returns the grid cell under a screen point. The result may lie
// off the grid.
func (c *Camera) CellAt(screenX, screenY float32) core.Position {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	return core.Pos(int(math.Floor(wy/CellSize)), int(math.Floor(wx/CellSize)))
}

// CellPixels is the on-screen side of one cell.
func (c *Camera) CellPixels() float32 {
	return CellSize * c.Zoom
}

// HandleEvent processes pointer events for pan and zoom. Secondary or
// tertiary drags pan; scrolling zooms around the pointer.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, keeping the world point under (centerX,
// centerY) fixed on screen.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)

	c.Zoom = clampZoom(c.Zoom * factor)

	newScreenX, newScreenY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newScreenX
	c.OffsetY += centerY - newScreenY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 - float32(worldY)*c.Zoom
}

// FitGrid zooms and centres so a rows x cols grid fills the screen with
// margin pixels to spare on each side.
func (c *Camera) FitGrid(rows, cols int, screenWidth, screenHeight float32, margin float32) {
	worldW := float64(cols) * CellSize
	worldH := float64(rows) * CellSize
	if worldW <= 0 || worldH <= 0 {
		return
	}

	zoomX := (screenWidth - 2*margin) / float32(worldW)
	zoomY := (screenHeight - 2*margin) / float32(worldH)
	c.Zoom = clampZoom(min(zoomX, zoomY))
	c.CenterOn(worldW/2, worldH/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return min(max(z, minZoom), maxZoom)
}
