package algo

import (
	"testing"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// createGrid creates an all-Clean rows x cols grid.
func createGrid(t *testing.T, rows, cols int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(rows, cols)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", rows, cols, err)
	}
	return g
}

// checkPath verifies endpoints and 4-connected unit steps over passable cells.
func checkPath(t *testing.T, g *core.Grid, path core.Path, start, goal core.Position) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("expected path %v -> %v, got none", start, goal)
	}
	if path[0] != start {
		t.Errorf("path starts at %v, want %v", path[0], start)
	}
	if path[len(path)-1] != goal {
		t.Errorf("path ends at %v, want %v", path[len(path)-1], goal)
	}
	for i, p := range path {
		c, err := g.CellState(p)
		if err != nil || c == core.Obstacle {
			t.Errorf("step %d at %v is not traversable (%v, %v)", i, p, c, err)
		}
		if i > 0 && core.Manhattan(path[i-1], p) != 1 {
			t.Errorf("step %d jumps from %v to %v", i, path[i-1], p)
		}
	}
}

func TestAllPlannersAgree(t *testing.T) {
	g := createGrid(t, 12, 12)
	g.Fill(core.Rect{R0: 2, C0: 5, R1: 11, C1: 6}, core.Obstacle)
	g.Fill(core.Rect{R0: 6, C0: 0, R1: 7, C1: 4}, core.Obstacle)
	g.Fill(core.Rect{R0: 3, C0: 3, R1: 5, C1: 5}, core.Dirty)

	cases := []struct {
		start, goal core.Position
	}{
		{core.Pos(0, 0), core.Pos(11, 11)},
		{core.Pos(10, 0), core.Pos(0, 10)},
		{core.Pos(5, 4), core.Pos(5, 6)},
		{core.Pos(7, 0), core.Pos(5, 0)},
		{core.Pos(3, 3), core.Pos(3, 3)},
	}

	planners := []Planner{NewAStar(), NewBFS()}

	for _, tc := range cases {
		var lengths []int
		for _, p := range planners {
			path := p.FindPath(tc.start, tc.goal, g)
			checkPath(t, g, path, tc.start, tc.goal)
			lengths = append(lengths, len(path))
		}
		if lengths[0] != lengths[1] {
			t.Errorf("%v -> %v: A* length %d, BFS length %d", tc.start, tc.goal, lengths[0], lengths[1])
		}
	}
}

func TestPlannerByName(t *testing.T) {
	for name, want := range map[string]string{"astar": "A*", "bfs": "BFS", "": "A*"} {
		p, ok := New(name)
		if !ok {
			t.Fatalf("New(%q) not found", name)
		}
		if p.Name() != want {
			t.Errorf("New(%q).Name() = %q, want %q", name, p.Name(), want)
		}
	}
	if _, ok := New("dijkstra"); ok {
		t.Error("unknown planner name should not resolve")
	}
}

func TestStatsCounting(t *testing.T) {
	g := createGrid(t, 4, 4)
	g.Fill(core.Rect{R0: 0, C0: 3, R1: 4, C1: 4}, core.Obstacle)

	a := NewAStar()
	a.FindPath(core.Pos(0, 0), core.Pos(3, 2), g)
	a.FindPath(core.Pos(0, 0), core.Pos(0, 3), g)

	s := a.Stats()
	if s.Searches != 2 || s.Failures != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.Expanded == 0 {
		t.Error("expected some expansions")
	}
}
