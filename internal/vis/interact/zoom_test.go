package interact

import (
	"testing"

	"gioui.org/f32"
	"gioui.org/io/pointer"
	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

func TestCellAtRoundTrip(t *testing.T) {
	c := NewCamera()
	c.Pan(13, -7)
	c.ZoomBy(1.7, 100, 100)

	for _, p := range []core.Position{core.Pos(0, 0), core.Pos(3, 9), core.Pos(29, 29)} {
		x, y := c.CellCenter(p)
		assert.Equal(t, p, c.CellAt(x, y))
	}
	x, y := c.CellOrigin(core.Pos(0, 0))
	assert.Equal(t, core.Pos(-1, -1), c.CellAt(x-1, y-1))
}

func TestFitGridCentres(t *testing.T) {
	c := NewCamera()
	c.FitGrid(30, 30, 800, 600, 20)

	assert.InDelta(t, 560.0/720.0, c.Zoom, 1e-4)
	left, top := c.CellOrigin(core.Pos(0, 0))
	right, bottom := c.CellOrigin(core.Pos(30, 30))
	assert.InDelta(t, 400, (left+right)/2, 1e-3)
	assert.InDelta(t, 300, (top+bottom)/2, 1e-3)
	assert.InDelta(t, 20, top, 1e-3)
}

func TestZoomKeepsPointFixed(t *testing.T) {
	c := NewCamera()
	wx, wy := c.ScreenToWorld(250, 150)
	c.HandleEvent(pointer.Event{Kind: pointer.Scroll, Position: f32.Pt(250, 150), Scroll: f32.Pt(0, -1)})
	assert.InDelta(t, 1.1, c.Zoom, 1e-6)

	sx, sy := c.WorldToScreen(wx, wy)
	assert.InDelta(t, 250, sx, 1e-3)
	assert.InDelta(t, 150, sy, 1e-3)
}

func TestZoomClamped(t *testing.T) {
	c := NewCamera()
	for i := 0; i < 100; i++ {
		c.ZoomBy(2, 0, 0)
	}
	assert.Equal(t, float32(maxZoom), c.Zoom)
	for i := 0; i < 200; i++ {
		c.ZoomBy(0.5, 0, 0)
	}
	assert.Equal(t, float32(minZoom), c.Zoom)
}

func TestSecondaryDragPans(t *testing.T) {
	c := NewCamera()
	c.HandleEvent(pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonSecondary, Position: f32.Pt(10, 10)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Buttons: pointer.ButtonSecondary, Position: f32.Pt(40, 25)})
	c.HandleEvent(pointer.Event{Kind: pointer.Release, Position: f32.Pt(40, 25)})
	assert.Equal(t, float32(30), c.OffsetX)
	assert.Equal(t, float32(15), c.OffsetY)

	// Primary drags leave the view alone.
	c.HandleEvent(pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonPrimary, Position: f32.Pt(0, 0)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Buttons: pointer.ButtonPrimary, Position: f32.Pt(50, 50)})
	assert.Equal(t, float32(30), c.OffsetX)
}
