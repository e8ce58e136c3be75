package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	g, err := NewGrid(rows, cols)
	require.NoError(t, err)
	return g
}

func TestNewGridRejectsEmpty(t *testing.T) {
	_, err := NewGrid(0, 5)
	assert.ErrorIs(t, err, ErrInvalidInstance)
}

func TestCellStateOutOfBounds(t *testing.T) {
	g := newTestGrid(t, 3, 4)
	for _, p := range []Position{Pos(-1, 0), Pos(0, -1), Pos(3, 0), Pos(0, 4)} {
		_, err := g.CellState(p)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "expected out of bounds for %v", p)
	}
	assert.ErrorIs(t, g.ClearCell(Pos(9, 9)), ErrOutOfBounds)
}

func TestCellStateIdempotent(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	g.Fill(Rect{R0: 1, C0: 1, R1: 3, C1: 3}, Dirty)

	first, err := g.CellState(Pos(2, 2))
	require.NoError(t, err)
	second, err := g.CellState(Pos(2, 2))
	require.NoError(t, err)
	assert.Equal(t, Dirty, first)
	assert.Equal(t, first, second)
}

func TestClearCell(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	require.NoError(t, g.SetCell(Pos(1, 1), Dirty))
	require.NoError(t, g.SetCell(Pos(2, 2), Obstacle))

	require.NoError(t, g.ClearCell(Pos(1, 1)))
	c, _ := g.CellState(Pos(1, 1))
	assert.Equal(t, Clean, c)

	// Clearing twice is a no-op.
	require.NoError(t, g.ClearCell(Pos(1, 1)))
	c, _ = g.CellState(Pos(1, 1))
	assert.Equal(t, Clean, c)

	// Obstacles are static.
	require.NoError(t, g.ClearCell(Pos(2, 2)))
	c, _ = g.CellState(Pos(2, 2))
	assert.Equal(t, Obstacle, c)
}

func TestFindNearestDirty(t *testing.T) {
	g := newTestGrid(t, 10, 10)
	_, ok := g.FindNearestDirty(Pos(5, 5))
	assert.False(t, ok, "clean grid has no dirty cell")

	require.NoError(t, g.SetCell(Pos(0, 0), Dirty))
	require.NoError(t, g.SetCell(Pos(7, 5), Dirty))
	p, ok := g.FindNearestDirty(Pos(5, 5))
	require.True(t, ok)
	assert.Equal(t, Pos(7, 5), p)
}

func TestFindNearestDirtyTieBreak(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	// All three sit at distance 2 from (2,2); (0,2) is first in row-major order.
	require.NoError(t, g.SetCell(Pos(2, 0), Dirty))
	require.NoError(t, g.SetCell(Pos(0, 2), Dirty))
	require.NoError(t, g.SetCell(Pos(4, 2), Dirty))

	for i := 0; i < 10; i++ {
		p, ok := g.FindNearestDirty(Pos(2, 2))
		require.True(t, ok)
		assert.Equal(t, Pos(0, 2), p)
	}
}

func TestFillClipsToGrid(t *testing.T) {
	g := newTestGrid(t, 4, 4)
	n := g.Fill(Rect{R0: 2, C0: 2, R1: 10, C1: 10}, Dirty)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, g.DirtyCount())
	assert.Equal(t, []Position{Pos(2, 2), Pos(2, 3), Pos(3, 2), Pos(3, 3)}, g.DirtyCells())
}

func TestReachable(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	// Wall off the right column.
	g.Fill(Rect{R0: 0, C0: 1, R1: 3, C1: 2}, Obstacle)

	reach := g.Reachable(Pos(0, 0))
	assert.Equal(t, 3, reach.Size())
	assert.True(t, reach.Has(Pos(2, 0)))
	assert.False(t, reach.Has(Pos(0, 2)))

	assert.Equal(t, 0, g.Reachable(Pos(0, 1)).Size())
}

func TestInstanceValidate(t *testing.T) {
	inst, err := NewInstance(5, 5, Pos(2, 2))
	require.NoError(t, err)
	inst.AddRobots(3)
	require.NoError(t, inst.Validate())
	assert.Equal(t, RobotID(2), inst.Robots[2].ID)
	assert.Equal(t, 100, inst.Robots[2].Battery)
	assert.Equal(t, Working, inst.Robots[2].State)

	require.NoError(t, inst.Grid.SetCell(inst.Home, Obstacle))
	assert.ErrorIs(t, inst.Validate(), ErrInvalidInstance)

	inst, err = NewInstance(5, 5, Pos(7, 2))
	require.NoError(t, err)
	err = inst.Validate()
	assert.ErrorIs(t, err, ErrInvalidInstance)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestInstanceValidateThreshold(t *testing.T) {
	inst, err := NewInstance(5, 5, Pos(2, 2))
	require.NoError(t, err)
	inst.AddRobots(1)

	inst.Battery.LowThreshold = 0
	assert.ErrorIs(t, inst.Validate(), ErrInvalidInstance)

	inst.Battery.MoveCost = 0
	assert.NoError(t, inst.Validate(), "free moves never drain")

	inst.Battery.MoveCost = 2
	inst.Battery.LowThreshold = 1
	assert.ErrorIs(t, inst.Validate(), ErrInvalidInstance)

	inst.Battery.LowThreshold = 2
	assert.NoError(t, inst.Validate())
}

func TestUnreachableDirty(t *testing.T) {
	inst, err := NewInstance(3, 3, Pos(0, 0))
	require.NoError(t, err)
	inst.Grid.Fill(Rect{R0: 0, C0: 1, R1: 3, C1: 2}, Obstacle)
	require.NoError(t, inst.Grid.SetCell(Pos(1, 2), Dirty))
	require.NoError(t, inst.Grid.SetCell(Pos(2, 0), Dirty))

	assert.Equal(t, []Position{Pos(1, 2)}, inst.UnreachableDirty())
}
