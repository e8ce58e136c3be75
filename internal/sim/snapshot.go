package sim

import (
	"fmt"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// RobotView is the read-only per-robot data a display needs.
type RobotView struct {
	ID      core.RobotID    `json:"id"`
	Pos     core.Position   `json:"pos"`
	Battery int             `json:"battery"`
	State   core.RobotState `json:"state"`
	Target  *core.Position  `json:"target,omitempty"`
	Stalled bool            `json:"stalled,omitempty"`
}

// Snapshot is an immutable copy of the world after a tick. Displays get a
// fresh one per tick and may keep it as long as they like.
type Snapshot struct {
	Tick      int           `json:"tick"`
	Rows      int           `json:"rows"`
	Cols      int           `json:"cols"`
	Cells     []core.Cell   `json:"cells"` // row-major
	Robots    []RobotView   `json:"robots"`
	Home      core.Position `json:"home"`
	Dirty     int           `json:"dirty"`
	Capacity  int           `json:"capacity"`
	Threshold int           `json:"threshold"`
}

// Cell returns the state of (row, col), or Obstacle when off the grid.
func (s *Snapshot) Cell(row, col int) core.Cell {
	if row < 0 || row >= s.Rows || col < 0 || col >= s.Cols {
		return core.Obstacle
	}
	return s.Cells[row*s.Cols+col]
}

// CellState makes a snapshot usable as planner terrain, so displays can
// show the route a robot would take from the frozen world.
func (s *Snapshot) CellState(p core.Position) (core.Cell, error) {
	if p.Row < 0 || p.Row >= s.Rows || p.Col < 0 || p.Col >= s.Cols {
		return core.Obstacle, fmt.Errorf("%w: %v", core.ErrOutOfBounds, p)
	}
	return s.Cells[p.Row*s.Cols+p.Col], nil
}
