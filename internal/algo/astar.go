package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// astarNode for priority queue.
type astarNode struct {
	pos   core.Position
	g     int // Cost so far
	f     int // g + h
	seq   int // Insertion order, breaks f ties
	index int // heap index
}

// astarHeap implements heap.Interface.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// AStar is a 4-connected, unit-cost A* planner with a Manhattan heuristic.
// Among equal f values the earlier-inserted frontier entry wins. Duplicate
// frontier entries are allowed and skipped lazily once their cell is closed.
type AStar struct {
	stats Stats
}

// NewAStar creates an A* planner.
func NewAStar() *AStar {
	return &AStar{}
}

func (a *AStar) Name() string { return "A*" }

// Stats returns cumulative search counters.
func (a *AStar) Stats() Stats { return a.stats }

// FindPath finds a shortest path from start to goal.
func (a *AStar) FindPath(start, goal core.Position, t Terrain) core.Path {
	a.stats.Searches++
	path, expanded := astarSearch(start, goal, t)
	a.stats.Expanded += expanded
	if path == nil {
		a.stats.Failures++
	}
	return path
}

// FindPath runs a one-off A* search.
func FindPath(start, goal core.Position, t Terrain) core.Path {
	path, _ := astarSearch(start, goal, t)
	return path
}

func astarSearch(start, goal core.Position, t Terrain) (core.Path, int) {
	if !passable(t, start) || !passable(t, goal) {
		return nil, 0
	}

	heuristic := func(p core.Position) int {
		return core.Manhattan(p, goal)
	}

	open := &astarHeap{}
	heap.Init(open)

	seq := 0
	heap.Push(open, &astarNode{pos: start, g: 0, f: heuristic(start), seq: seq})

	gScore := map[core.Position]int{start: 0}
	cameFrom := make(map[core.Position]core.Position)
	closed := make(map[core.Position]bool)
	expanded := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		// Stale entry: a cheaper copy of this cell was already expanded.
		if closed[current.pos] {
			continue
		}
		if current.pos == goal {
			return reconstructPath(cameFrom, start, goal), expanded
		}
		closed[current.pos] = true
		expanded++

		for _, m := range moves {
			neighbor := current.pos.Add(m[0], m[1])
			if closed[neighbor] || !passable(t, neighbor) {
				continue
			}

			tentative := current.g + 1
			if old, seen := gScore[neighbor]; seen && tentative >= old {
				continue
			}
			gScore[neighbor] = tentative
			cameFrom[neighbor] = current.pos

			seq++
			heap.Push(open, &astarNode{
				pos: neighbor,
				g:   tentative,
				f:   tentative + heuristic(neighbor),
				seq: seq,
			})
		}
	}

	return nil, expanded // No path found
}

func reconstructPath(cameFrom map[core.Position]core.Position, start, goal core.Position) core.Path {
	path := core.Path{goal}
	for p := goal; p != start; {
		p = cameFrom[p]
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
