package draw

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/interact"
)

// Robot palette, indexed by robot ID.
var robotPalette = []color.NRGBA{
	{R: 40, G: 90, B: 230, A: 255},  // blue
	{R: 200, G: 60, B: 200, A: 255}, // magenta
	{R: 20, G: 170, B: 190, A: 255}, // cyan
	{R: 230, G: 120, B: 30, A: 255}, // orange
	{R: 120, G: 80, B: 200, A: 255}, // purple
	{R: 160, G: 110, B: 60, A: 255}, // brown
}

// Battery bar colors
var (
	ColorBatteryOK    = color.NRGBA{R: 70, G: 200, B: 90, A: 255}
	ColorBatteryLow   = color.NRGBA{R: 230, G: 60, B: 50, A: 255}
	ColorBatteryTrack = color.NRGBA{R: 30, G: 30, B: 30, A: 200}
	ColorLabel        = color.NRGBA{R: 200, G: 30, B: 30, A: 255}
)

// RobotColor returns the color for a robot.
func RobotColor(id core.RobotID) color.NRGBA {
	return robotPalette[int(id)%len(robotPalette)]
}

// StateTint dims the robot color while it is not working.
func StateTint(col color.NRGBA, state core.RobotState) color.NRGBA {
	switch state {
	case core.Returning:
		col.A = 220
	case core.Recharging, core.Idle:
		col.A = 140
	}
	return col
}

// BatteryPercent scales battery to 0-100 of capacity.
func BatteryPercent(battery, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return battery * 100 / capacity
}

// DrawRobot draws a robot as a disc with a battery bar under it and its
// battery percentage above it.
func DrawRobot(gtx layout.Context, th *material.Theme, rv sim.RobotView, capacity, lowPct int, camera *interact.Camera, selected bool) {
	cx, cy := camera.CellCenter(rv.Pos)
	side := camera.CellPixels()
	radius := side * 0.38

	if selected {
		DrawCircle(gtx, cx, cy, radius+3, ColorSelection)
	}
	DrawCircle(gtx, cx, cy, radius, StateTint(RobotColor(rv.ID), rv.State))
	if rv.Stalled {
		DrawCircleOutline(gtx, cx, cy, radius, ColorBatteryLow, 2)
	}

	pct := BatteryPercent(rv.Battery, capacity)
	drawBatteryBar(gtx, cx, cy+radius+2, side*0.8, max(2, side/10), pct, lowPct)

	if side >= 14 {
		drawRobotLabel(gtx, th, cx, cy-radius-2, fmt.Sprintf("%d%%", pct))
	}
}

func drawBatteryBar(gtx layout.Context, cx, top, width, height float32, pct, lowPct int) {
	x0 := int(cx - width/2)
	y0 := int(top)
	track := image.Rect(x0, y0, x0+int(width), y0+int(height))
	paint.FillShape(gtx.Ops, ColorBatteryTrack, clip.Rect(track).Op())

	col := ColorBatteryOK
	if pct < lowPct {
		col = ColorBatteryLow
	}
	fill := track
	fill.Max.X = x0 + int(width*float32(pct)/100)
	paint.FillShape(gtx.Ops, col, clip.Rect(fill).Op())
}

// drawRobotLabel places text centred horizontally on cx with its baseline
// just above bottom.
func drawRobotLabel(gtx layout.Context, th *material.Theme, cx, bottom float32, txt string) {
	label := material.Label(th, unit.Sp(10), txt)
	label.Color = ColorLabel

	macro := op.Record(gtx.Ops)
	lgtx := gtx
	lgtx.Constraints = layout.Constraints{Max: image.Pt(gtx.Dp(60), gtx.Dp(20))}
	dims := label.Layout(lgtx)
	call := macro.Stop()

	defer op.Offset(image.Pt(int(cx)-dims.Size.X/2, int(bottom)-dims.Size.Y)).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}

// DrawRobots draws all robots in snapshot order, so later robots sit on
// top when they share a cell.
func DrawRobots(gtx layout.Context, th *material.Theme, snap *sim.Snapshot, lowPct int, camera *interact.Camera, selected core.RobotID, hasSelection bool) {
	for _, rv := range snap.Robots {
		DrawRobot(gtx, th, rv, snap.Capacity, lowPct, camera, hasSelection && rv.ID == selected)
	}
}
