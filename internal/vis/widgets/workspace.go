// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/draw"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/interact"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/state"
)

const fitMargin = 16

// Workspace is the main 2D grid view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera

	fitPending bool
}

// NewWorkspace creates a new workspace widget. The first frame fits the
// grid to the window.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:      st,
		camera:     camera,
		fitPending: true,
	}
}

// Fit refits the grid to the window on the next frame.
func (w *Workspace) Fit() {
	w.fitPending = true
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	// Clip to bounds
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	snap := w.state.Snapshot()
	if w.fitPending && bounds.X > 0 && bounds.Y > 0 {
		w.camera.FitGrid(snap.Rows, snap.Cols, float32(bounds.X), float32(bounds.Y), fitMargin)
		w.fitPending = false
	}

	w.handlePointerEvents(gtx)

	draw.DrawCells(gtx, &snap, w.camera)
	draw.DrawGridLines(gtx, snap.Rows, snap.Cols, w.camera, draw.ColorGridLine)
	draw.DrawHome(gtx, snap.Home, w.camera)

	// Route of the selected robot, replanned on the frozen snapshot.
	sel, hasSel := w.state.Selected()
	if hasSel && sel.Target != nil {
		col := draw.RobotColor(sel.ID)
		path := algo.FindPath(sel.Pos, *sel.Target, &snap)
		draw.DrawPath(gtx, path, w.camera, col, 3)
		draw.DrawTarget(gtx, *sel.Target, w.camera, col)
	}

	lowPct := draw.BatteryPercent(snap.Threshold, snap.Capacity)
	draw.DrawRobots(gtx, th, &snap, lowPct, w.camera, sel.ID, hasSel)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	// Register for pointer events
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			w.handleClick(pe.Position.X, pe.Position.Y)
		}
	}
}

// handleClick selects the robot under the pointer, or clears the
// selection when the click lands on an empty cell.
func (w *Workspace) handleClick(screenX, screenY float32) {
	cell := w.camera.CellAt(screenX, screenY)
	if id, ok := w.state.RobotAt(cell); ok {
		w.state.Select(id)
		return
	}
	w.state.ClearSelection()
}
