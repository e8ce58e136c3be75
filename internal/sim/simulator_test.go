package sim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// createInstance builds a rows x cols instance with home at the centre,
// one dirty block, and n robots.
func createInstance(t *testing.T, rows, cols int, dirty core.Rect, n int) *core.Instance {
	t.Helper()
	inst, err := core.NewInstance(rows, cols, core.Pos(rows/2, cols/2))
	require.NoError(t, err)
	inst.Grid.Fill(dirty, core.Dirty)
	inst.AddRobots(n)
	return inst
}

func newTestSimulator(t *testing.T, inst *core.Instance) *Simulator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Instance = inst
	cfg.Rate = 0
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	return s
}

func TestSingleClusterEndToEnd(t *testing.T) {
	cluster := core.Rect{R0: 0, C0: 0, R1: 5, C1: 5}
	inst := createInstance(t, 30, 30, cluster, 1)
	s := newTestSimulator(t, inst)

	const bound = 2000
	require.True(t, s.RunUntilClean(bound), "surface not clean after %d ticks", bound)
	assert.Less(t, s.Tick(), bound)

	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			state, err := inst.Grid.CellState(core.Pos(r, c))
			require.NoError(t, err)
			assert.Equal(t, core.Clean, state, "cell (%d,%d)", r, c)
		}
	}

	m := s.Metrics()
	assert.Equal(t, 25, m.InitialDirty)
	assert.Equal(t, 25, m.CellsCleaned)
	assert.Equal(t, 0, m.DirtyRemaining)
	assert.Equal(t, s.Tick(), m.TicksToClean)
	assert.Zero(t, m.Stalls)
}

func TestFleetEventuallyParksAtHome(t *testing.T) {
	inst := createInstance(t, 20, 20, core.Rect{R0: 2, C0: 2, R1: 6, C1: 6}, 3)
	s := newTestSimulator(t, inst)

	require.True(t, s.RunUntilClean(2000))
	s.RunTicks(200)

	for _, rv := range s.Snapshot().Robots {
		assert.Equal(t, inst.Home, rv.Pos, "robot %d", rv.ID)
		assert.Contains(t, []core.RobotState{core.Idle, core.Recharging, core.Working}, rv.State)
		assert.GreaterOrEqual(t, rv.Battery, 0)
		assert.LessOrEqual(t, rv.Battery, 100)
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() []Snapshot {
		inst := createInstance(t, 16, 16, core.Rect{R0: 0, C0: 0, R1: 4, C1: 16}, 4)
		s := newTestSimulator(t, inst)
		var snaps []Snapshot
		s.AddObserver(ObserverFunc(func(snap Snapshot) {
			snaps = append(snaps, snap)
		}))
		s.RunTicks(120)
		return snaps
	}

	a, b := run(), run()
	require.Len(t, a, 120)
	assert.Equal(t, a, b)
	for i, snap := range a {
		assert.Equal(t, i+1, snap.Tick)
	}
}

func TestObserverCancelStopsAtTickBoundary(t *testing.T) {
	inst := createInstance(t, 10, 10, core.Rect{R0: 0, C0: 0, R1: 10, C1: 10}, 2)
	s := newTestSimulator(t, inst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.AddObserver(ObserverFunc(func(snap Snapshot) {
		if snap.Tick == 5 {
			cancel()
		}
	}))

	m, err := s.Run(ctx)
	require.NoError(t, err, "quit is a normal ending")
	assert.Equal(t, 5, m.Ticks)
	assert.Equal(t, 5, s.Tick())
}

func TestRunAlreadyCancelled(t *testing.T) {
	inst := createInstance(t, 5, 5, core.Rect{R0: 0, C0: 0, R1: 1, C1: 1}, 1)
	s := newTestSimulator(t, inst)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, m.Ticks)
}

func TestRunMaxTicks(t *testing.T) {
	inst := createInstance(t, 8, 8, core.Rect{R0: 0, C0: 0, R1: 8, C1: 8}, 1)
	cfg := DefaultConfig()
	cfg.Instance = inst
	cfg.Rate = 0
	cfg.MaxTicks = 17
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	m, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, m.Ticks)
	assert.NotEmpty(t, m.RunID)
}

func TestRunPacedStopWhenClean(t *testing.T) {
	inst := createInstance(t, 6, 6, core.Rect{R0: 3, C0: 3, R1: 4, C1: 5}, 1)
	cfg := DefaultConfig()
	cfg.Instance = inst
	cfg.Rate = 1000
	cfg.StopWhenClean = true
	cfg.Planner = algo.NewBFS()

	result, err := RunSimulation(cfg, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, result.Clean)
	assert.Equal(t, 2, result.Metrics.CellsCleaned)
	assert.Equal(t, result.Metrics.Ticks, result.Metrics.TicksToClean)
	assert.Positive(t, result.Metrics.Planner.Searches)
}

func TestNewSimulatorRejectsInvalidInstance(t *testing.T) {
	_, err := NewSimulator(SimulationConfig{})
	assert.ErrorIs(t, err, core.ErrInvalidInstance)

	inst := createInstance(t, 5, 5, core.Rect{}, 1)
	inst.Home = core.Pos(9, 9)
	_, err = NewSimulator(SimulationConfig{Instance: inst})
	assert.ErrorIs(t, err, core.ErrInvalidInstance)
}

func TestSnapshotIsACopy(t *testing.T) {
	inst := createInstance(t, 5, 5, core.Rect{R0: 0, C0: 0, R1: 1, C1: 5}, 1)
	s := newTestSimulator(t, inst)

	snap := s.Snapshot()
	assert.Equal(t, 5, snap.Dirty)
	assert.Equal(t, core.Dirty, snap.Cell(0, 0))
	assert.Equal(t, core.Obstacle, snap.Cell(-1, 0), "off-grid reads as obstacle")

	snap.Cells[0] = core.Clean
	snap.Robots[0].Pos = core.Pos(0, 0)

	c, _ := inst.Grid.CellState(core.Pos(0, 0))
	assert.Equal(t, core.Dirty, c)
	assert.Equal(t, inst.Home, inst.Robots[0].Pos)
}

func TestExportMetrics(t *testing.T) {
	inst := createInstance(t, 6, 6, core.Rect{R0: 0, C0: 0, R1: 2, C1: 2}, 1)
	s := newTestSimulator(t, inst)
	s.RunTicks(10)

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, s.ExportMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m SimulationMetrics
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, 10, m.Ticks)
	assert.Equal(t, 4, m.InitialDirty)
}

func TestStallIsCountedOnce(t *testing.T) {
	inst := createInstance(t, 30, 30, core.Rect{}, 1)
	r := inst.Robots[0]
	r.Pos = core.Pos(0, 0)
	r.Battery = 3
	r.State = core.Returning
	s := newTestSimulator(t, inst)

	s.RunTicks(10)
	m := s.Metrics()
	assert.Equal(t, 1, m.Stalls)
	assert.Equal(t, 3, m.Moves)
	assert.Equal(t, 3, m.BatteryUsed)

	snap := s.Snapshot()
	assert.True(t, snap.Robots[0].Stalled)
	assert.Equal(t, 0, snap.Robots[0].Battery)
}

func TestSnapshotIsPlannerTerrain(t *testing.T) {
	inst := createInstance(t, 5, 5, core.Rect{}, 1)
	inst.Grid.Fill(core.Rect{R0: 0, C0: 1, R1: 4, C1: 2}, core.Obstacle)
	s := newTestSimulator(t, inst)
	snap := s.Snapshot()

	_, err := snap.CellState(core.Pos(5, 0))
	assert.ErrorIs(t, err, core.ErrOutOfBounds)

	path := algo.FindPath(core.Pos(0, 0), core.Pos(0, 4), &snap)
	require.True(t, path.Found())
	assert.Len(t, path, 13, "detour around the wall through row 4")
	assert.Equal(t, inst.Battery.LowThreshold, snap.Threshold)
}
