// Package core defines the domain model for the cleaning fleet.
package core

import "fmt"

// Cell is the state of one grid cell.
type Cell int

const (
	Clean    Cell = iota // Nothing to do
	Dirty                // Needs a robot to visit it
	Obstacle             // Never traversable
)

func (c Cell) String() string {
	return [...]string{"Clean", "Dirty", "Obstacle"}[c]
}

// RobotState is the behavioural state of a robot.
type RobotState int

const (
	Working    RobotState = iota // Seeking and cleaning dirty cells
	Returning                    // Low battery, heading home
	Recharging                   // At home, battery filling up
	Idle                         // No work left, parked at home
)

func (s RobotState) String() string {
	return [...]string{"Working", "Returning", "Recharging", "Idle"}[s]
}

// Position is a (row, col) grid coordinate.
type Position struct {
	Row, Col int
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Add returns p shifted by (dr, dc).
func (p Position) Add(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Manhattan returns |Δrow| + |Δcol|.
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Path is an ordered sequence of positions, start and goal inclusive.
// An empty path means no route exists.
type Path []Position

// Found reports whether the path connects anything at all.
func (p Path) Found() bool {
	return len(p) > 0
}

// Next returns the position one step along the path: p[1] when the path
// has more than one element, p[0] when already at the goal.
func (p Path) Next() (Position, bool) {
	switch len(p) {
	case 0:
		return Position{}, false
	case 1:
		return p[0], true
	default:
		return p[1], true
	}
}

// Goal returns the last position of the path.
func (p Path) Goal() (Position, bool) {
	if len(p) == 0 {
		return Position{}, false
	}
	return p[len(p)-1], true
}

// Rect is a half-open block of cells [R0,R1) x [C0,C1).
type Rect struct {
	R0, C0, R1, C1 int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Position) bool {
	return p.Row >= r.R0 && p.Row < r.R1 && p.Col >= r.C0 && p.Col < r.C1
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.R1 <= r.R0 || r.C1 <= r.C0
}
