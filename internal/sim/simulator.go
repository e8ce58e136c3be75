// Package sim provides the tick loop that drives the cleaning fleet.
//
// Every tick updates all robots once, sequentially, in their fixed list
// order. A robot's whole update (query, plan, move, clean, transition)
// finishes before the next robot starts, so two robots racing for the same
// dirty cell always resolve in favour of the earlier one. The loop ends
// only on the external stop signal, delivered as context cancellation and
// checked at tick boundaries, or on an optional tick/clean limit.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/elektrokombinacija/cleanfleet/internal/agent"
	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// SimulationConfig configures the simulation parameters
type SimulationConfig struct {
	// Instance to simulate
	Instance *core.Instance

	// Planner shared by all agents; nil means A*
	Planner algo.Planner

	// Tick rate in Hz; <= 0 runs as fast as possible
	Rate float64

	// Stop after this many ticks (0 = no limit)
	MaxTicks int

	// Stop once no Dirty cell remains
	StopWhenClean bool

	// Structured logger; nil discards
	Logger *log.Logger
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Rate:          10,
		MaxTicks:      0,
		StopWhenClean: false,
	}
}

// Observer receives a snapshot after every tick. It is called on the
// simulation goroutine and must not block for long.
type Observer interface {
	OnTick(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

// OnTick calls f(s).
func (f ObserverFunc) OnTick(s Snapshot) { f(s) }

// Simulator runs the fleet tick by tick.
type Simulator struct {
	mu sync.Mutex

	config    SimulationConfig
	instance  *core.Instance
	agents    []*agent.Agent
	planner   algo.Planner
	observers []Observer
	logger    *log.Logger

	tick    int
	stalled map[core.RobotID]bool
	metrics SimulationMetrics
}

// NewSimulator validates the instance and creates one agent per robot, in
// instance order.
func NewSimulator(config SimulationConfig) (*Simulator, error) {
	inst := config.Instance
	if inst == nil {
		return nil, fmt.Errorf("%w: no instance", core.ErrInvalidInstance)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	planner := config.Planner
	if planner == nil {
		planner = algo.NewAStar()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Simulator{
		config:   config,
		instance: inst,
		planner:  planner,
		logger:   logger,
		stalled:  make(map[core.RobotID]bool),
		metrics:  newMetrics(inst),
	}
	for _, r := range inst.Robots {
		s.agents = append(s.agents, agent.New(r, inst.Home, inst.Battery, planner))
	}

	if lost := inst.UnreachableDirty(); len(lost) > 0 {
		logger.Warn("dirty cells unreachable from home", "count", len(lost), "first", lost[0])
	}
	return s, nil
}

// AddObserver registers o to receive a snapshot after every tick.
func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Run executes the simulation until ctx is cancelled or a configured end
// condition is met. Cancellation is only observed between ticks.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	s.mu.Lock()
	s.metrics.StartTime = time.Now()
	s.mu.Unlock()

	s.logger.Info("simulation started",
		"run", s.metrics.RunID,
		"robots", len(s.agents),
		"dirty", s.instance.Grid.DirtyCount(),
		"planner", s.planner.Name(),
		"rate", s.config.Rate,
	)

	var tickC <-chan time.Time
	if s.config.Rate > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / s.config.Rate))
		defer ticker.Stop()
		tickC = ticker.C
	}

	var err error
loop:
	for {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		if s.done() {
			break
		}

		if tickC != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break loop
			case <-tickC:
			}
		}

		s.Step()
	}

	m := s.finish()
	s.logger.Info("simulation finished",
		"run", m.RunID,
		"ticks", m.Ticks,
		"cleaned", m.CellsCleaned,
		"dirty", m.DirtyRemaining,
		"stalls", m.Stalls,
	)

	if errors.Is(err, context.Canceled) {
		// Quit from the display or an OS signal is a normal ending.
		err = nil
	}
	return &m, err
}

// RunTicks runs n ticks back to back without pacing.
func (s *Simulator) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntilClean steps unpaced until the grid has no Dirty cell or
// maxTicks ticks have run. It reports whether the grid got clean.
func (s *Simulator) RunUntilClean(maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		if s.Dirty() == 0 {
			return true
		}
		s.Step()
	}
	return s.Dirty() == 0
}

// Step advances the simulation by one tick.
func (s *Simulator) Step() {
	s.mu.Lock()

	s.tick++
	grid := s.instance.Grid
	for _, a := range s.agents {
		s.record(a.Update(grid))
	}

	s.metrics.Ticks = s.tick
	dirty := grid.DirtyCount()
	if dirty == 0 && s.metrics.TicksToClean == 0 {
		s.metrics.TicksToClean = s.tick
		s.logger.Info("surface clean", "tick", s.tick)
	}

	var snap Snapshot
	observers := s.observers
	if len(observers) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.OnTick(snap)
	}
}

// record folds one agent report into metrics and logs.
func (s *Simulator) record(rep agent.Report) {
	m := &s.metrics
	if rep.Moved {
		m.Moves++
	}
	m.BatteryUsed += rep.Spent
	m.BatteryCharged += rep.Charged
	if rep.Cleaned != nil {
		m.CellsCleaned++
		s.logger.Debug("cell cleaned", "tick", s.tick, "robot", rep.Robot, "cell", *rep.Cleaned)
	}
	if rep.NoPath {
		m.NoPathEvents++
		s.logger.Debug("no path, retrying next tick", "tick", s.tick, "robot", rep.Robot, "state", rep.To)
	}

	if rep.Stalled && !s.stalled[rep.Robot] {
		m.Stalls++
		s.logger.Warn("robot stalled", "tick", s.tick, "robot", rep.Robot, "err", core.ErrBatteryExhausted)
	}
	s.stalled[rep.Robot] = rep.Stalled

	if rep.Transitioned() {
		if rep.To == core.Recharging {
			m.Recharges++
		}
		s.logger.Debug("state change", "tick", s.tick, "robot", rep.Robot, "from", rep.From, "to", rep.To)
	}
}

// done reports whether a configured end condition holds.
func (s *Simulator) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.MaxTicks > 0 && s.tick >= s.config.MaxTicks {
		return true
	}
	return s.config.StopWhenClean && s.instance.Grid.DirtyCount() == 0
}

func (s *Simulator) finish() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	s.metrics.DirtyRemaining = s.instance.Grid.DirtyCount()
	if sr, ok := s.planner.(algo.StatsReporter); ok {
		s.metrics.Planner = sr.Stats()
	}
	return s.metrics
}

// Tick returns the number of completed ticks.
func (s *Simulator) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Dirty returns the number of Dirty cells left.
func (s *Simulator) Dirty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance.Grid.DirtyCount()
}

// Snapshot returns a copy of the current world state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() Snapshot {
	grid := s.instance.Grid
	snap := Snapshot{
		Tick:      s.tick,
		Rows:      grid.Rows(),
		Cols:      grid.Cols(),
		Cells:     grid.Cells(),
		Home:      s.instance.Home,
		Dirty:     grid.DirtyCount(),
		Capacity:  s.instance.Battery.Capacity,
		Threshold: s.instance.Battery.LowThreshold,
		Robots:    make([]RobotView, 0, len(s.agents)),
	}
	for _, a := range s.agents {
		r := a.Robot().Clone()
		snap.Robots = append(snap.Robots, RobotView{
			ID:      r.ID,
			Pos:     r.Pos,
			Battery: r.Battery,
			State:   r.State,
			Target:  r.Target,
			Stalled: s.stalled[r.ID],
		})
	}
	return snap
}

// Metrics returns current simulation metrics
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics
	m.DirtyRemaining = s.instance.Grid.DirtyCount()
	if sr, ok := s.planner.(algo.StatsReporter); ok {
		m.Planner = sr.Stats()
	}
	return m
}

// ExportMetrics writes metrics to a JSON file
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimulationMetrics collects metrics during simulation
type SimulationMetrics struct {
	RunID   string     `json:"run_id"`
	Planner algo.Stats `json:"planner"`

	// Timing
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Ticks     int       `json:"ticks"`

	// Work
	InitialDirty   int `json:"initial_dirty"`
	CellsCleaned   int `json:"cells_cleaned"`
	DirtyRemaining int `json:"dirty_remaining"`
	TicksToClean   int `json:"ticks_to_clean"` // 0 until the surface is clean

	// Movement
	Moves        int `json:"moves"`
	NoPathEvents int `json:"no_path_events"`

	// Energy
	BatteryUsed    int `json:"battery_used"`
	BatteryCharged int `json:"battery_charged"`
	Recharges      int `json:"recharges"`
	Stalls         int `json:"stalls"`
}

func newMetrics(inst *core.Instance) SimulationMetrics {
	return SimulationMetrics{
		RunID:        uuid.NewString(),
		InitialDirty: inst.Grid.DirtyCount(),
	}
}

// SimulationResult is the final output of a simulation run
type SimulationResult struct {
	Metrics SimulationMetrics `json:"metrics"`
	Clean   bool              `json:"clean"`
	Error   string            `json:"error,omitempty"`
}

// RunSimulation is a convenience function that runs config to completion
// under a timeout and reports whether the surface was cleaned.
func RunSimulation(config SimulationConfig, timeout time.Duration) (*SimulationResult, error) {
	s, err := NewSimulator(config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	metrics, err := s.Run(ctx)
	result := &SimulationResult{Metrics: *metrics}
	result.Clean = metrics.DirtyRemaining == 0
	if err != nil {
		result.Error = err.Error()
	}
	return result, err
}
