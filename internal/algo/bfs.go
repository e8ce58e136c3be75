package algo

import (
	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// BFS is a breadth-first planner. On a unit-cost grid it returns paths of
// the same length as A*, at the price of expanding every closer cell.
type BFS struct {
	stats Stats
}

// NewBFS creates a breadth-first planner.
func NewBFS() *BFS {
	return &BFS{}
}

func (b *BFS) Name() string { return "BFS" }

// Stats returns cumulative search counters.
func (b *BFS) Stats() Stats { return b.stats }

// FindPath finds a shortest path from start to goal.
func (b *BFS) FindPath(start, goal core.Position, t Terrain) core.Path {
	b.stats.Searches++
	if !passable(t, start) || !passable(t, goal) {
		b.stats.Failures++
		return nil
	}

	cameFrom := map[core.Position]core.Position{}
	visited := map[core.Position]bool{start: true}
	queue := []core.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == goal {
			return reconstructPath(cameFrom, start, goal)
		}
		b.stats.Expanded++

		for _, m := range moves {
			n := current.Add(m[0], m[1])
			if visited[n] || !passable(t, n) {
				continue
			}
			visited[n] = true
			cameFrom[n] = current
			queue = append(queue, n)
		}
	}

	b.stats.Failures++
	return nil
}
