package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

func snapshot(tick, dirty int, robots ...sim.RobotView) sim.Snapshot {
	return sim.Snapshot{Tick: tick, Rows: 3, Cols: 3, Cells: make([]core.Cell, 9), Dirty: dirty, Capacity: 100, Robots: robots}
}

func TestProgressAndHistory(t *testing.T) {
	st := NewState(snapshot(0, 4))
	assert.Equal(t, 0.0, st.Progress())

	calls := 0
	st.SetInvalidate(func() { calls++ })
	st.OnTick(snapshot(1, 3))
	st.OnTick(snapshot(2, 1))

	assert.Equal(t, 0.75, st.Progress())
	assert.Equal(t, []int{4, 3, 1}, st.History())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, st.Snapshot().Tick)
	assert.Equal(t, 4, st.InitialDirty())

	st.Finish()
	assert.True(t, st.Finished())
	assert.Equal(t, 3, calls)
}

func TestNothingToCleanIsComplete(t *testing.T) {
	assert.Equal(t, 1.0, NewState(snapshot(0, 0)).Progress())
}

func TestHistoryIsBounded(t *testing.T) {
	st := NewState(snapshot(0, MaxHistory+10))
	for i := 1; i <= MaxHistory+5; i++ {
		st.OnTick(snapshot(i, MaxHistory+10-i))
	}
	h := st.History()
	require.Len(t, h, MaxHistory)
	assert.Equal(t, 5, h[len(h)-1])
}

func TestSelection(t *testing.T) {
	a := sim.RobotView{ID: 0, Pos: core.Pos(1, 1), Battery: 90}
	b := sim.RobotView{ID: 1, Pos: core.Pos(1, 1), Battery: 40}
	st := NewState(snapshot(0, 0, a, b))

	id, ok := st.RobotAt(core.Pos(1, 1))
	require.True(t, ok)
	assert.Equal(t, core.RobotID(1), id, "topmost robot wins")
	_, ok = st.RobotAt(core.Pos(0, 0))
	assert.False(t, ok)

	st.Select(1)
	rv, ok := st.Selected()
	require.True(t, ok)
	assert.Equal(t, 40, rv.Battery)

	b.Battery = 35
	st.OnTick(snapshot(1, 0, a, b))
	rv, _ = st.Selected()
	assert.Equal(t, 35, rv.Battery, "selection follows new snapshots")

	st.Select(1)
	_, ok = st.Selected()
	assert.False(t, ok, "selecting again toggles off")

	st.Select(0)
	st.ClearSelection()
	_, ok = st.Selected()
	assert.False(t, ok)
}
