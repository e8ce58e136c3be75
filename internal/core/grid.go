package core

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Grid is the dirtiness/obstacle map. It is the single shared source of
// truth: a cell cleared by one robot is visible to the next robot at once.
type Grid struct {
	rows, cols int
	cells      []Cell // row-major
}

// NewGrid creates an all-Clean grid of the given size.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidInstance, rows, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}, nil
}

// Rows returns the row count.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the column count.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

func (g *Grid) index(p Position) (int, error) {
	if !g.InBounds(p) {
		return 0, fmt.Errorf("%w: %v not in %dx%d", ErrOutOfBounds, p, g.rows, g.cols)
	}
	return p.Row*g.cols + p.Col, nil
}

// CellState returns the state of the cell at p.
func (g *Grid) CellState(p Position) (Cell, error) {
	i, err := g.index(p)
	if err != nil {
		return Clean, err
	}
	return g.cells[i], nil
}

// ClearCell marks a Dirty cell Clean. Clean cells are left alone, and so are
// obstacles: the obstacle layout is fixed for a run.
func (g *Grid) ClearCell(p Position) error {
	i, err := g.index(p)
	if err != nil {
		return err
	}
	if g.cells[i] == Dirty {
		g.cells[i] = Clean
	}
	return nil
}

// SetCell overwrites a cell. Used while building an instance.
func (g *Grid) SetCell(p Position, c Cell) error {
	i, err := g.index(p)
	if err != nil {
		return err
	}
	g.cells[i] = c
	return nil
}

// Fill sets every in-bounds cell of r to c and returns how many were set.
func (g *Grid) Fill(r Rect, c Cell) int {
	n := 0
	for row := max(r.R0, 0); row < min(r.R1, g.rows); row++ {
		for col := max(r.C0, 0); col < min(r.C1, g.cols); col++ {
			g.cells[row*g.cols+col] = c
			n++
		}
	}
	return n
}

// FindNearestDirty returns the Dirty cell closest to from by Manhattan
// distance. Ties go to the cell met first in a row-major scan, so the same
// grid always yields the same target.
func (g *Grid) FindNearestDirty(from Position) (Position, bool) {
	best := Position{}
	bestDist := -1
	for i, c := range g.cells {
		if c != Dirty {
			continue
		}
		p := Position{Row: i / g.cols, Col: i % g.cols}
		if d := Manhattan(from, p); bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0
}

// DirtyCount returns how many cells are still Dirty.
func (g *Grid) DirtyCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Dirty {
			n++
		}
	}
	return n
}

// DirtyCells lists Dirty cells in row-major order.
func (g *Grid) DirtyCells() []Position {
	var out []Position
	for i, c := range g.cells {
		if c == Dirty {
			out = append(out, Position{Row: i / g.cols, Col: i % g.cols})
		}
	}
	return out
}

// Cells returns a row-major copy of every cell.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{rows: g.rows, cols: g.cols, cells: g.Cells()}
}

// Reachable flood-fills the 4-connected non-obstacle cells reachable from
// start. The result is empty when start is off-grid or an obstacle.
func (g *Grid) Reachable(start Position) *mapset.Set[Position] {
	visited := mapset.New[Position]()
	if c, err := g.CellState(start); err != nil || c == Obstacle {
		return &visited
	}

	queue := []Position{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range [...][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			n := current.Add(d[0], d[1])
			if visited.Has(n) {
				continue
			}
			if c, err := g.CellState(n); err != nil || c == Obstacle {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}
	return &visited
}
