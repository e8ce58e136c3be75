// Command cleanfleetvis shows the cleaning fleet live in a Gio window.
package main

import (
	"context"
	"flag"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/charmbracelet/log"

	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/scenario"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
	"github.com/elektrokombinacija/cleanfleet/internal/vis"
	"github.com/elektrokombinacija/cleanfleet/internal/vis/state"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario file (empty = built-in layout)")
	robots := flag.Int("robots", -1, "Override the scenario's robot count")
	rate := flag.Float64("rate", -1, "Ticks per second (default: scenario rate)")
	plannerName := flag.String("planner", "astar", "Path planner: astar or bfs")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "cleanfleetvis"})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	scn := scenario.Default()
	if *scenarioPath != "" {
		var err error
		if scn, err = scenario.Load(*scenarioPath); err != nil {
			logger.Fatal("load scenario", "err", err)
		}
	}
	if *robots >= 0 {
		scn.Robots = *robots
	}
	tickRate := float64(scn.Rate)
	if *rate >= 0 {
		tickRate = *rate
	}

	inst, err := scn.Instance()
	if err != nil {
		logger.Fatal("build instance", "err", err)
	}
	planner, ok := algo.New(*plannerName)
	if !ok {
		logger.Fatal("unknown planner", "name", *plannerName)
	}
	s, err := sim.NewSimulator(sim.SimulationConfig{
		Instance: inst,
		Planner:  planner,
		Rate:     tickRate,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("create simulator", "err", err)
	}

	st := state.NewState(s.Snapshot())
	s.AddObserver(st)

	// Closing the window is the stop signal.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Run(ctx); err != nil {
			logger.Error("simulation", "err", err)
		}
		st.Finish()
	}()

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Cleaning Fleet - "+scn.Name),
			app.Size(unit.Dp(1000), unit.Dp(900)),
		)

		application := vis.NewApp(st, cancel)
		if err := application.Run(window); err != nil {
			logger.Error("window", "err", err)
		}
		<-done
		os.Exit(0)
	}()
	app.Main()
}
