package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cleanfleet/internal/vis/state"
)

// Timeline shows cleaning progress: a bar of the cleaned fraction and a
// sparkline of the dirty count over recent ticks.
type Timeline struct {
	state *state.State
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{
		state: st,
	}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 60

	// Background
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	margin := 20
	trackWidth := gtx.Constraints.Max.X - 2*margin

	t.drawSparkline(gtx, margin, 4, trackWidth, 26)

	// Track background
	trackY := 38
	trackHeight := 6
	trackRect := image.Rect(margin, trackY-trackHeight/2, margin+trackWidth, trackY+trackHeight/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	// Progress fill
	progress := t.state.Progress()
	fillWidth := int(float64(trackWidth) * progress)
	if fillWidth > 0 {
		fillRect := image.Rect(margin, trackY-trackHeight/2, margin+fillWidth, trackY+trackHeight/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fillRect).Op())
	}

	t.drawLabels(gtx, th, progress, height)

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

// drawSparkline draws one bar per history sample, scaled to the initial
// dirt, squeezing samples when there are more than pixels.
func (t *Timeline) drawSparkline(gtx layout.Context, x0, y0, width, height int) {
	history := t.state.History()
	peak := t.state.InitialDirty()
	if len(history) == 0 || peak == 0 || width <= 0 {
		return
	}

	col := color.NRGBA{R: 80, G: 170, B: 90, A: 200}
	for px := 0; px < width; px++ {
		i := px * len(history) / width
		if i >= len(history) {
			break
		}
		h := history[i] * height / peak
		if h <= 0 {
			continue
		}
		bar := image.Rect(x0+px, y0+height-h, x0+px+1, y0+height)
		paint.FillShape(gtx.Ops, col, clip.Rect(bar).Op())
	}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme, progress float64, height int) {
	snap := t.state.Snapshot()

	tickLabel := material.Label(th, 12, fmt.Sprintf("tick %d", snap.Tick))
	tickLabel.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	tickLabel.Alignment = text.Start

	cleanLabel := material.Label(th, 12, fmt.Sprintf("%.0f%% clean", progress*100))
	cleanLabel.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
	cleanLabel.Alignment = text.End

	gtx.Constraints.Max.Y = height
	layout.Inset{Top: unit.Dp(42), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return tickLabel.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return cleanLabel.Layout(gtx)
			}),
		)
	})
}
