// Package levy runs a Lévy-walk search over a grid: walkers confined to
// one quadrant each jump with heavy-tailed step lengths until every dirty
// cell has been detected, then fall back to a master position at the grid
// centre.
package levy

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

// Params shape the step length distribution.
type Params struct {
	Mu      float64 // Pareto shape
	MaxStep int     // cap on a single jump
}

// DefaultParams returns mu=2 with jumps capped at 10 cells.
func DefaultParams() Params {
	return Params{Mu: 2, MaxStep: 10}
}

// Walker is one searching agent.
type Walker struct {
	ID     core.RobotID
	Pos    core.Position
	Bounds core.Rect
	Done   bool
}

// Result summarises a search.
type Result struct {
	Ticks    int     `json:"ticks"`
	Targets  int     `json:"targets"`
	Detected int     `json:"detected"`
	Visited  int     `json:"visited"`  // distinct cells stepped on
	Coverage float64 `json:"coverage"` // Visited / cells
	Finished bool    `json:"finished"`
}

// Search holds the state of one Lévy-walk run. Dirty cells in the grid are
// the targets; the grid itself is never modified.
type Search struct {
	grid   *core.Grid
	rnd    *rand.Rand
	params Params
	logger *log.Logger

	walkers   []*Walker
	master    core.Position
	pheromone []int
	visited   mapset.Set[core.Position]
	detected  mapset.Set[core.Position]
	targets   int
	tick      int
	observers []sim.Observer
}

// NewSearch places four walkers at the centres of the grid's quadrants.
// All randomness comes from rnd, so a fixed seed replays the same search.
func NewSearch(grid *core.Grid, rnd *rand.Rand, params Params, logger *log.Logger) *Search {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if params.MaxStep <= 0 {
		params.MaxStep = DefaultParams().MaxStep
	}
	if params.Mu <= 0 {
		params.Mu = DefaultParams().Mu
	}

	rows, cols := grid.Rows(), grid.Cols()
	midR, midC := rows/2, cols/2
	s := &Search{
		grid:      grid,
		rnd:       rnd,
		params:    params,
		logger:    logger,
		master:    core.Pos(midR, midC),
		pheromone: make([]int, rows*cols),
		visited:   mapset.New[core.Position](),
		detected:  mapset.New[core.Position](),
		targets:   grid.DirtyCount(),
	}

	quadrants := []core.Rect{
		{R0: 0, C0: 0, R1: midR, C1: midC},
		{R0: 0, C0: midC, R1: midR, C1: cols},
		{R0: midR, C0: 0, R1: rows, C1: midC},
		{R0: midR, C0: midC, R1: rows, C1: cols},
	}
	for i, q := range quadrants {
		if q.Empty() {
			continue
		}
		s.walkers = append(s.walkers, &Walker{
			ID:     core.RobotID(i),
			Pos:    core.Pos(q.R0+(q.R1-q.R0)/2, q.C0+(q.C1-q.C0)/2),
			Bounds: q,
		})
	}
	return s
}

// AddObserver registers o to receive a snapshot after every tick.
func (s *Search) AddObserver(o sim.Observer) {
	s.observers = append(s.observers, o)
}

// Walkers returns the walkers in update order.
func (s *Search) Walkers() []*Walker {
	return s.walkers
}

// Master returns the rally point.
func (s *Search) Master() core.Position {
	return s.master
}

// Pheromone returns how many times walkers landed on p.
func (s *Search) Pheromone(p core.Position) int {
	if !s.grid.InBounds(p) {
		return 0
	}
	return s.pheromone[p.Row*s.grid.Cols()+p.Col]
}

// Detected reports whether the target at p has been found.
func (s *Search) Detected(p core.Position) bool {
	return s.detected.Has(p)
}

// Finished reports whether every walker is done and back at the master.
func (s *Search) Finished() bool {
	for _, w := range s.walkers {
		if !w.Done || w.Pos != s.master {
			return false
		}
	}
	return true
}

// Step advances every walker once.
func (s *Search) Step() {
	s.tick++
	for _, w := range s.walkers {
		if w.Done {
			w.Pos = w.Pos.Add(sign(s.master.Row-w.Pos.Row), sign(s.master.Col-w.Pos.Col))
			continue
		}

		w.Pos = s.jump(w)
		s.pheromone[w.Pos.Row*s.grid.Cols()+w.Pos.Col]++
		s.visited.Put(w.Pos)
		if c, _ := s.grid.CellState(w.Pos); c == core.Dirty && !s.detected.Has(w.Pos) {
			s.detected.Put(w.Pos)
			s.logger.Debug("target detected", "tick", s.tick, "walker", w.ID, "cell", w.Pos)
		}
		if s.detected.Size() == s.targets {
			w.Done = true
		}
	}

	if len(s.observers) > 0 {
		snap := s.Snapshot()
		for _, o := range s.observers {
			o.OnTick(snap)
		}
	}
}

// jump draws a Pareto step length and a uniform heading, then clamps the
// landing cell to the walker's quadrant.
func (s *Search) jump(w *Walker) core.Position {
	u := 1 - s.rnd.Float64() // (0,1]
	step := min(int(math.Pow(u, -1/s.params.Mu)), s.params.MaxStep)
	angle := s.rnd.Float64() * 2 * math.Pi

	dr := int(float64(step) * math.Sin(angle))
	dc := int(float64(step) * math.Cos(angle))
	b := w.Bounds
	return core.Pos(
		min(max(w.Pos.Row+dr, b.R0), b.R1-1),
		min(max(w.Pos.Col+dc, b.C0), b.C1-1),
	)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Run steps until the search finishes, ctx is cancelled, or maxTicks ticks
// have run (0 = no limit). rate paces ticks per second; <= 0 is unpaced.
func (s *Search) Run(ctx context.Context, rate float64, maxTicks int) Result {
	s.logger.Info("levy search started", "walkers", len(s.walkers), "targets", s.targets)

	var tickC <-chan time.Time
	if rate > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
		defer ticker.Stop()
		tickC = ticker.C
	}

loop:
	for !s.Finished() && ctx.Err() == nil {
		if maxTicks > 0 && s.tick >= maxTicks {
			break
		}
		if tickC != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-tickC:
			}
		}
		s.Step()
	}

	res := s.Result()
	s.logger.Info("levy search finished",
		"ticks", res.Ticks,
		"detected", res.Detected,
		"targets", res.Targets,
		"coverage", res.Coverage,
	)
	return res
}

// Result reports progress so far.
func (s *Search) Result() Result {
	cells := s.grid.Rows() * s.grid.Cols()
	return Result{
		Ticks:    s.tick,
		Targets:  s.targets,
		Detected: s.detected.Size(),
		Visited:  s.visited.Size(),
		Coverage: float64(s.visited.Size()) / float64(cells),
		Finished: s.Finished(),
	}
}

// Snapshot renders the search for the fleet displays: undetected targets
// stay Dirty, detected ones show as Clean, and walkers appear as robots
// that are Working while searching and Idle once done.
func (s *Search) Snapshot() sim.Snapshot {
	cells := s.grid.Cells()
	cols := s.grid.Cols()
	s.detected.Each(func(p core.Position) {
		cells[p.Row*cols+p.Col] = core.Clean
	})

	snap := sim.Snapshot{
		Tick:     s.tick,
		Rows:     s.grid.Rows(),
		Cols:     cols,
		Cells:    cells,
		Home:     s.master,
		Dirty:    s.targets - s.detected.Size(),
		Capacity: 100,
		Robots:   make([]sim.RobotView, 0, len(s.walkers)),
	}
	for _, w := range s.walkers {
		state := core.Working
		if w.Done {
			state = core.Idle
		}
		snap.Robots = append(snap.Robots, sim.RobotView{
			ID:      w.ID,
			Pos:     w.Pos,
			Battery: 100,
			State:   state,
		})
	}
	return snap
}
