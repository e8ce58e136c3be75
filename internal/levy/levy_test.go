package levy

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

// cornerGrid builds the four-corner layout: 5x5 dirty blocks in each corner.
func cornerGrid(t *testing.T, n int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(n, n)
	require.NoError(t, err)
	g.Fill(core.Rect{R0: 0, C0: 0, R1: 5, C1: 5}, core.Dirty)
	g.Fill(core.Rect{R0: 0, C0: n - 5, R1: 5, C1: n}, core.Dirty)
	g.Fill(core.Rect{R0: n - 5, C0: 0, R1: n, C1: 5}, core.Dirty)
	g.Fill(core.Rect{R0: n - 5, C0: n - 5, R1: n, C1: n}, core.Dirty)
	return g
}

func newSearch(t *testing.T, seed uint64) *Search {
	t.Helper()
	return NewSearch(cornerGrid(t, 30), rand.New(rand.NewPCG(seed, seed)), DefaultParams(), nil)
}

func TestQuadrantLayout(t *testing.T) {
	s := newSearch(t, 1)
	require.Len(t, s.Walkers(), 4)
	assert.Equal(t, core.Pos(15, 15), s.Master())

	starts := []core.Position{core.Pos(7, 7), core.Pos(7, 22), core.Pos(22, 7), core.Pos(22, 22)}
	for i, w := range s.Walkers() {
		assert.Equal(t, starts[i], w.Pos, "walker %d", i)
		assert.True(t, w.Bounds.Contains(w.Pos))
		assert.False(t, w.Done)
	}
}

func TestWalkersStayInQuadrant(t *testing.T) {
	s := newSearch(t, 7)
	for tick := 0; tick < 500; tick++ {
		s.Step()
		for _, w := range s.Walkers() {
			if !w.Done {
				require.True(t, w.Bounds.Contains(w.Pos), "walker %d left %+v at %v", w.ID, w.Bounds, w.Pos)
			}
		}
	}
}

func TestPheromoneCountsEveryLanding(t *testing.T) {
	s := newSearch(t, 3)
	const ticks = 20
	for i := 0; i < ticks; i++ {
		s.Step()
	}
	require.False(t, s.Walkers()[0].Done)

	total := 0
	for r := 0; r < 30; r++ {
		for c := 0; c < 30; c++ {
			total += s.Pheromone(core.Pos(r, c))
		}
	}
	assert.Equal(t, ticks*4, total)
	assert.Zero(t, s.Pheromone(core.Pos(-1, 0)))
}

func TestSameSeedSameSearch(t *testing.T) {
	a, b := newSearch(t, 42), newSearch(t, 42)
	ra := a.Run(context.Background(), 0, 3000)
	rb := b.Run(context.Background(), 0, 3000)
	assert.Equal(t, ra, rb)
	for i := range a.Walkers() {
		assert.Equal(t, *a.Walkers()[i], *b.Walkers()[i])
	}
}

func TestSearchFinishesAtMaster(t *testing.T) {
	s := newSearch(t, 2024)
	res := s.Run(context.Background(), 0, 200000)
	require.True(t, res.Finished)
	assert.Equal(t, 100, res.Targets)
	assert.Equal(t, res.Targets, res.Detected)
	assert.Positive(t, res.Coverage)
	assert.LessOrEqual(t, res.Coverage, 1.0)

	for _, w := range s.Walkers() {
		assert.True(t, w.Done)
		assert.Equal(t, s.Master(), w.Pos)
	}

	snap := s.Snapshot()
	assert.Zero(t, snap.Dirty)
	for _, c := range snap.Cells {
		assert.NotEqual(t, core.Dirty, c)
	}
}

func TestNoTargetsFinishesQuickly(t *testing.T) {
	g, err := core.NewGrid(10, 10)
	require.NoError(t, err)
	s := NewSearch(g, rand.New(rand.NewPCG(1, 2)), DefaultParams(), nil)

	res := s.Run(context.Background(), 0, 100)
	assert.True(t, res.Finished)
	// One jump to notice there is nothing to find, then at most 5 diagonal
	// steps back from a quadrant corner.
	assert.LessOrEqual(t, res.Ticks, 6)
}

func TestRunHonoursCancel(t *testing.T) {
	s := newSearch(t, 9)
	ctx, cancel := context.WithCancel(context.Background())
	s.AddObserver(sim.ObserverFunc(func(snap sim.Snapshot) {
		if snap.Tick == 3 {
			cancel()
		}
	}))
	res := s.Run(ctx, 0, 0)
	assert.Equal(t, 3, res.Ticks)
	assert.False(t, res.Finished)
}

func TestSnapshotMarksDetected(t *testing.T) {
	g, err := core.NewGrid(4, 4)
	require.NoError(t, err)
	g.Fill(core.Rect{R0: 0, C0: 0, R1: 4, C1: 4}, core.Dirty)
	s := NewSearch(g, rand.New(rand.NewPCG(5, 5)), DefaultParams(), nil)

	s.Step()
	snap := s.Snapshot()
	for _, w := range s.Walkers() {
		assert.True(t, s.Detected(w.Pos))
		assert.Equal(t, core.Clean, snap.Cell(w.Pos.Row, w.Pos.Col))
	}
	assert.Equal(t, 16-s.Result().Detected, snap.Dirty)

	c, _ := g.CellState(s.Walkers()[0].Pos)
	assert.Equal(t, core.Dirty, c, "search never edits the grid")
}
