// Package algo implements grid path planners for the cleaning fleet.
package algo

import (
	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// Terrain is the read-only grid capability a planner needs. Positions that
// return an error are off the grid and never expanded.
type Terrain interface {
	CellState(p core.Position) (core.Cell, error)
}

// Planner is the interface for shortest-path planners.
type Planner interface {
	// FindPath returns the cells from start to goal inclusive, or an empty
	// path when goal cannot be reached. It never caches: every call sees
	// the terrain as it is now.
	FindPath(start, goal core.Position, t Terrain) core.Path

	// Name returns the algorithm name.
	Name() string
}

// Stats accumulates planner effort across searches.
type Stats struct {
	Searches int `json:"searches"`
	Expanded int `json:"expanded"`
	Failures int `json:"failures"`
}

// StatsReporter is implemented by planners that count their work.
type StatsReporter interface {
	Stats() Stats
}

// moves is the fixed 4-connected neighbour order: up, down, left, right.
// Expansion order is part of the deterministic tie-break.
var moves = [...][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// passable reports whether p is on the terrain and not an obstacle.
// Dirty and Clean cells are equally traversable.
func passable(t Terrain, p core.Position) bool {
	c, err := t.CellState(p)
	return err == nil && c != core.Obstacle
}

// New returns the planner registered under name ("astar" or "bfs").
func New(name string) (Planner, bool) {
	switch name {
	case "astar", "a*", "":
		return NewAStar(), true
	case "bfs":
		return NewBFS(), true
	default:
		return nil, false
	}
}
