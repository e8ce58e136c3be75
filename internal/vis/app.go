// Package vis implements a Gio-based live view of the cleaning fleet.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/cleanfleet/internal/vis/interact"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/state"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/widgets"
)

// App is the main visualization application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	camera    *interact.Camera

	// quit is the stop signal handed to the simulation.
	quit func()
}

// NewApp creates an app that shows st. quit is called once when the
// window goes away, whether closed by the user or by the Quit button.
func NewApp(st *state.State, quit func()) *App {
	camera := interact.NewCamera()
	a := &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		camera:    camera,
		quit:      quit,
	}
	a.toolbar.OnFit = a.workspace.Fit
	return a
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	defer a.quit()

	var ops op.Ops
	a.state.SetInvalidate(w.Invalidate)
	a.toolbar.OnQuit = func() { w.Perform(system.ActionClose) }

	// Event filters for keyboard input
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(w, ke)
				}
			}

			// Request focus for keyboard input
			event.Op(gtx.Ops, tag)
			gtx.Execute(key.FocusCmd{Tag: tag})

			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) handleKeyEvent(w *app.Window, e key.Event) {
	switch e.Name {
	case "Q", key.NameEscape:
		w.Perform(system.ActionClose)
	case "F":
		a.workspace.Fit()
	case "R":
		a.camera.Reset()
	case key.NameSpace:
		a.state.ClearSelection()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		// Toolbar at top
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		// Grid view
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.workspace.Layout(gtx, a.theme)
		}),
		// Timeline at bottom
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
