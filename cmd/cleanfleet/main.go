// Command cleanfleet runs the cleaning fleet simulation headless or in a
// terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell"

	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/levy"
	"github.com/elektrokombinacija/cleanfleet/internal/scenario"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
	"github.com/elektrokombinacija/cleanfleet/internal/term"
)

type options struct {
	scenario      string
	robots        int
	rate          float64
	maxTicks      int
	planner       string
	display       string
	mode          string
	seed          uint64
	metrics       string
	logLevel      string
	logFile       string
	stopWhenClean bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scenario, "scenario", "", "Scenario file (empty = built-in layout)")
	flag.IntVar(&opts.robots, "robots", -1, "Override the scenario's robot count")
	flag.Float64Var(&opts.rate, "rate", -1, "Ticks per second, 0 = unpaced (default: scenario rate)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 0, "Stop after this many ticks (0 = no limit)")
	flag.StringVar(&opts.planner, "planner", "astar", "Path planner: astar or bfs")
	flag.StringVar(&opts.display, "display", "none", "Display: none or term")
	flag.StringVar(&opts.mode, "mode", "clean", "Mode: clean (fleet) or levy (search)")
	flag.Uint64Var(&opts.seed, "seed", 1, "Random seed for levy mode")
	flag.StringVar(&opts.metrics, "metrics", "", "Write final metrics JSON to this file")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.logFile, "log-file", "", "Log to this file instead of stderr")
	flag.BoolVar(&opts.stopWhenClean, "stop-when-clean", false, "Stop once no dirty cell remains")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "cleanfleet: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	scn := scenario.Default()
	if opts.scenario != "" {
		if scn, err = scenario.Load(opts.scenario); err != nil {
			return err
		}
	}
	if opts.robots >= 0 {
		scn.Robots = opts.robots
	}
	rate := float64(scn.Rate)
	if opts.rate >= 0 {
		rate = opts.rate
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var display *term.Display
	switch opts.display {
	case "none":
	case "term":
		scr, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if display, err = term.New(scr, scn.Name); err != nil {
			return err
		}
		defer display.Close()
		go display.WatchQuit(ctx, cancel)
	default:
		return fmt.Errorf("unknown display %q", opts.display)
	}

	switch opts.mode {
	case "clean":
		return runClean(ctx, opts, scn, rate, logger, display)
	case "levy":
		return runLevy(ctx, opts, scn, rate, logger, display)
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func runClean(ctx context.Context, opts options, scn *scenario.Scenario, rate float64, logger *log.Logger, display *term.Display) error {
	inst, err := scn.Instance()
	if err != nil {
		return err
	}
	planner, ok := algo.New(opts.planner)
	if !ok {
		return fmt.Errorf("unknown planner %q", opts.planner)
	}

	s, err := sim.NewSimulator(sim.SimulationConfig{
		Instance:      inst,
		Planner:       planner,
		Rate:          rate,
		MaxTicks:      opts.maxTicks,
		StopWhenClean: opts.stopWhenClean,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	if display != nil {
		display.OnTick(s.Snapshot())
		s.AddObserver(display)
	}

	metrics, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if opts.metrics != "" {
		if err := s.ExportMetrics(opts.metrics); err != nil {
			return err
		}
		logger.Info("metrics written", "path", opts.metrics)
	}
	if display == nil {
		fmt.Printf("ticks=%d cleaned=%d/%d remaining=%d ticks_to_clean=%d stalls=%d\n",
			metrics.Ticks, metrics.CellsCleaned, metrics.InitialDirty,
			metrics.DirtyRemaining, metrics.TicksToClean, metrics.Stalls)
	}
	return nil
}

func runLevy(ctx context.Context, opts options, scn *scenario.Scenario, rate float64, logger *log.Logger, display *term.Display) error {
	inst, err := scn.Instance()
	if err != nil {
		return err
	}
	rnd := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	search := levy.NewSearch(inst.Grid, rnd, levy.DefaultParams(), logger)
	if display != nil {
		display.OnTick(search.Snapshot())
		search.AddObserver(display)
	}

	res := search.Run(ctx, rate, opts.maxTicks)
	if opts.metrics != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.metrics, data, 0644); err != nil {
			return err
		}
	}
	if display == nil {
		fmt.Printf("ticks=%d detected=%d/%d coverage=%.2f finished=%t\n",
			res.Ticks, res.Detected, res.Targets, res.Coverage, res.Finished)
	}
	return nil
}

// newLogger builds the run logger. A terminal display owns the screen, so
// without -log-file its logs are dropped.
func newLogger(opts options) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case opts.logFile != "":
		f, err := os.Create(opts.logFile)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, func() { f.Close() }
	case opts.display == "term":
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "cleanfleet",
	})
	return logger, closeFn, nil
}
