// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/interact"
)

// Colors for cell states
var (
	ColorClean     = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	ColorDirty     = color.NRGBA{R: 80, G: 170, B: 90, A: 255}
	ColorObstacle  = color.NRGBA{R: 60, G: 60, B: 65, A: 255}
	ColorHome      = color.NRGBA{R: 255, G: 210, B: 80, A: 255}
	ColorGridLine  = color.NRGBA{R: 0, G: 0, B: 0, A: 60}
	ColorSelection = color.NRGBA{R: 255, G: 255, B: 100, A: 255}
)

// CellColor returns the fill for a cell state.
func CellColor(c core.Cell) color.NRGBA {
	switch c {
	case core.Dirty:
		return ColorDirty
	case core.Obstacle:
		return ColorObstacle
	default:
		return ColorClean
	}
}

// DrawCells fills every visible cell of the snapshot.
func DrawCells(gtx layout.Context, snap *sim.Snapshot, camera *interact.Camera) {
	bounds := gtx.Constraints.Max
	side := camera.CellPixels()

	r0, c0, r1, c1 := visibleCells(snap, camera, bounds)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			x, y := camera.CellOrigin(core.Pos(row, col))
			rect := image.Rect(int(x), int(y), int(x+side+0.5), int(y+side+0.5))
			paint.FillShape(gtx.Ops, CellColor(snap.Cell(row, col)), clip.Rect(rect).Op())
		}
	}
}

// visibleCells clips the grid to the cells that intersect the screen.
func visibleCells(snap *sim.Snapshot, camera *interact.Camera, bounds image.Point) (r0, c0, r1, c1 int) {
	tl := camera.CellAt(0, 0)
	br := camera.CellAt(float32(bounds.X), float32(bounds.Y))
	r0, c0 = max(tl.Row, 0), max(tl.Col, 0)
	r1, c1 = min(br.Row+1, snap.Rows), min(br.Col+1, snap.Cols)
	return
}

// DrawGridLines draws thin lines between cells once they are large enough
// to tell apart.
func DrawGridLines(gtx layout.Context, rows, cols int, camera *interact.Camera, col color.NRGBA) {
	if camera.CellPixels() < 6 {
		return
	}
	left, top := camera.CellOrigin(core.Pos(0, 0))
	right, bottom := camera.CellOrigin(core.Pos(rows, cols))

	for c := 0; c <= cols; c++ {
		x, _ := camera.CellOrigin(core.Pos(0, c))
		rect := image.Rect(int(x), int(top), int(x)+1, int(bottom))
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
	for r := 0; r <= rows; r++ {
		_, y := camera.CellOrigin(core.Pos(r, 0))
		rect := image.Rect(int(left), int(y), int(right), int(y)+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}

// DrawHome outlines the home cell.
func DrawHome(gtx layout.Context, home core.Position, camera *interact.Camera) {
	x, y := camera.CellCenter(home)
	r := camera.CellPixels() / 2
	DrawCircleOutline(gtx, x, y, r, ColorHome, max(2, r/5))
}

// DrawCircle draws a filled circle.
func DrawCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	// Approximate circle with segments
	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawCircleOutline draws a circle outline.
func DrawCircleOutline(gtx layout.Context, centerX, centerY float32, radius float32, col color.NRGBA, strokeWidth float32) {
	// Outer circle
	var outerPath clip.Path
	outerPath.Begin(gtx.Ops)
	outerPath.Move(f32.Pt(centerX+radius, centerY))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + radius*float32(math.Cos(angle))
		y := centerY + radius*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	// Inner circle (hole)
	innerR := max(radius-strokeWidth, 0)
	outerPath.Move(f32.Pt(centerX+innerR-outerPath.Pos().X, centerY-outerPath.Pos().Y))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + innerR*float32(math.Cos(angle))
		y := centerY + innerR*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: outerPath.End()}.Op())
}
