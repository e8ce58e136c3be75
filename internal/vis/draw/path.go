package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/interact"
)

// DrawPath draws a planned path through cell centres with an arrow on
// every step.
func DrawPath(gtx layout.Context, path core.Path, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}

	w := width * camera.Zoom
	for i := 0; i < len(path)-1; i++ {
		x1, y1 := camera.CellCenter(path[i])
		x2, y2 := camera.CellCenter(path[i+1])
		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
		drawArrow(gtx, (x1+x2)/2, (y1+y2)/2, x2-x1, y2-y1, camera, col)
	}
}

// DrawTarget marks the cell a robot is heading for.
func DrawTarget(gtx layout.Context, target core.Position, camera *interact.Camera, col color.NRGBA) {
	x, y := camera.CellCenter(target)
	r := camera.CellPixels() * 0.35
	DrawCircleOutline(gtx, x, y, r, col, max(1.5, r/4))
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawArrow(gtx layout.Context, x, y, dirX, dirY float32, camera *interact.Camera, col color.NRGBA) {
	length := float32(math.Sqrt(float64(dirX*dirX + dirY*dirY)))
	if length < 5 {
		return
	}
	dirX /= length
	dirY /= length
	size := float32(4) * camera.Zoom

	// Arrow head points
	tipX := x + dirX*size
	tipY := y + dirY*size

	// Perpendicular
	perpX := -dirY * size * 0.5
	perpY := dirX * size * 0.5

	baseX := x - dirX*size*0.3
	baseY := y - dirY*size*0.3

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
