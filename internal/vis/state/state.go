// Package state holds what the visualizer shows: the latest simulation
// snapshot, a short history for the timeline, and the user's selection.
// The simulation goroutine writes through OnTick; the UI goroutine reads.
package state

import (
	"sync"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

// MaxHistory bounds the dirty-count history kept for the timeline.
const MaxHistory = 2048

// State holds all visualization state.
type State struct {
	mu sync.Mutex

	snap         sim.Snapshot
	initialDirty int
	history      []int // dirty count after each tick, oldest first

	selected     core.RobotID
	hasSelection bool
	finished     bool

	invalidate func()
}

// NewState starts from the world as it is before the first tick.
func NewState(initial sim.Snapshot) *State {
	return &State{
		snap:         initial,
		initialDirty: initial.Dirty,
		history:      []int{initial.Dirty},
	}
}

// SetInvalidate registers f to be called whenever new data arrives, so
// the window can schedule a frame.
func (s *State) SetInvalidate(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate = f
}

// OnTick records a new snapshot. It implements sim.Observer.
func (s *State) OnTick(snap sim.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.history = append(s.history, snap.Dirty)
	if n := len(s.history) - MaxHistory; n > 0 {
		s.history = append(s.history[:0], s.history[n:]...)
	}
	inv := s.invalidate
	s.mu.Unlock()

	if inv != nil {
		inv()
	}
}

// Finish marks the run as over.
func (s *State) Finish() {
	s.mu.Lock()
	s.finished = true
	inv := s.invalidate
	s.mu.Unlock()

	if inv != nil {
		inv()
	}
}

// Finished reports whether the run is over.
func (s *State) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Snapshot returns the latest snapshot.
func (s *State) Snapshot() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// History returns a copy of the dirty-count history.
func (s *State) History() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.history...)
}

// Progress returns the cleaned fraction of the initial dirt, 0-1.
func (s *State) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialDirty == 0 {
		return 1
	}
	return float64(s.initialDirty-s.snap.Dirty) / float64(s.initialDirty)
}

// InitialDirty returns the dirty count before the first tick.
func (s *State) InitialDirty() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialDirty
}

// Select makes id the selected robot, or toggles it off when it already is.
func (s *State) Select(id core.RobotID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasSelection && s.selected == id {
		s.hasSelection = false
		return
	}
	s.selected, s.hasSelection = id, true
}

// ClearSelection drops the selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSelection = false
}

// Selected returns the selected robot as of the latest snapshot.
func (s *State) Selected() (sim.RobotView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSelection {
		return sim.RobotView{}, false
	}
	for _, rv := range s.snap.Robots {
		if rv.ID == s.selected {
			return rv, true
		}
	}
	return sim.RobotView{}, false
}

// RobotAt returns the last robot drawn on cell p, matching draw order.
func (s *State) RobotAt(p core.Position) (core.RobotID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.snap.Robots) - 1; i >= 0; i-- {
		if s.snap.Robots[i].Pos == p {
			return s.snap.Robots[i].ID, true
		}
	}
	return 0, false
}
