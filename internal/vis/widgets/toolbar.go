package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cleanfleet/internal/vis/draw"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/state"
)

// Toolbar shows run status and the view controls.
type Toolbar struct {
	state *state.State

	fitBtn  widget.Clickable
	quitBtn widget.Clickable

	// Callbacks wired by the app
	OnFit  func()
	OnQuit func()
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State) *Toolbar {
	return &Toolbar{
		state: st,
	}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Dp(44)

	// Background
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	t.handleClicks(gtx)

	gtx.Constraints.Max.Y = height
	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.statusLabel(gtx, th, t.runStatus())
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutSeparator(gtx)
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.statusLabel(gtx, th, t.selectionStatus())
			}),

			// Spacer
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.buttonBase(gtx, th, &t.fitBtn, "Fit")
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.buttonBase(gtx, th, &t.quitBtn, "Quit")
			}),
		)
	})
}

func (t *Toolbar) runStatus() string {
	snap := t.state.Snapshot()
	s := fmt.Sprintf("tick %d   dirty %d/%d", snap.Tick, snap.Dirty, t.state.InitialDirty())
	if t.state.Finished() {
		s += "   stopped"
	}
	return s
}

func (t *Toolbar) selectionStatus() string {
	rv, ok := t.state.Selected()
	if !ok {
		return "click a robot to follow it"
	}
	snap := t.state.Snapshot()
	s := fmt.Sprintf("robot %d  %s  %d%%  at %v", rv.ID, rv.State, draw.BatteryPercent(rv.Battery, snap.Capacity), rv.Pos)
	if rv.Target != nil {
		s += fmt.Sprintf(" -> %v", *rv.Target)
	}
	if rv.Stalled {
		s += "  STALLED"
	}
	return s
}

func (t *Toolbar) statusLabel(gtx layout.Context, th *material.Theme, txt string) layout.Dimensions {
	label := material.Label(th, 13, txt)
	label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	return label.Layout(gtx)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) buttonBase(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if btn.Hovered() {
		bg.R = minU8(bg.R+15, 255)
		bg.G = minU8(bg.G+15, 255)
		bg.B = minU8(bg.B+15, 255)
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: 48, Y: 28}
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 12, text)
					label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
					return label.Layout(gtx)
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	for t.fitBtn.Clicked(gtx) {
		if t.OnFit != nil {
			t.OnFit()
		}
	}
	for t.quitBtn.Clicked(gtx) {
		if t.OnQuit != nil {
			t.OnQuit()
		}
	}
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
