// Package main generates deterministic cleaning scenarios for benchmarks.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
	"github.com/elektrokombinacija/cleanfleet/internal/scenario"
)

// Params defines parameters for scenario generation.
type Params struct {
	Seed        uint64
	Robots      int
	Rows        int
	Cols        int
	Clusters    int // dirty blocks
	ClusterSize int // side of each dirty block
	Obstacles   int // obstacle bars
}

// generate builds a scenario from p. The same params always give the same
// scenario. Home sits at the centre and is never covered.
func generate(p Params) *scenario.Scenario {
	rng := rand.New(rand.NewPCG(p.Seed, uint64(p.Rows)<<32|uint64(p.Cols)))

	s := &scenario.Scenario{
		Name:    fmt.Sprintf("clean_%d_%dx%d_%d", p.Robots, p.Rows, p.Cols, p.Seed),
		Rows:    p.Rows,
		Cols:    p.Cols,
		Home:    core.Pos(p.Rows/2, p.Cols/2),
		Robots:  p.Robots,
		Battery: core.DefaultBatteryParams(),
		Rate:    10,
	}

	// Obstacle bars first so dirt painted later stays reachable more often.
	for i := 0; i < p.Obstacles; i++ {
		length := 3 + rng.IntN(max(1, min(p.Rows, p.Cols)/3))
		r, c := rng.IntN(p.Rows), rng.IntN(p.Cols)
		rect := core.Rect{R0: r, C0: c, R1: r + 1, C1: c + length}
		if rng.IntN(2) == 0 {
			rect = core.Rect{R0: r, C0: c, R1: r + length, C1: c + 1}
		}
		if rect.Contains(s.Home) {
			continue
		}
		s.Regions = append(s.Regions, scenario.Region{Cell: core.Obstacle, Rect: clip(rect, p.Rows, p.Cols)})
	}

	size := min(p.ClusterSize, p.Rows, p.Cols)
	for i := 0; i < p.Clusters; i++ {
		r := rng.IntN(p.Rows - size + 1)
		c := rng.IntN(p.Cols - size + 1)
		s.Regions = append(s.Regions, scenario.Region{
			Cell: core.Dirty,
			Rect: core.Rect{R0: r, C0: c, R1: r + size, C1: c + size},
		})
	}
	return s
}

func clip(r core.Rect, rows, cols int) core.Rect {
	return core.Rect{R0: max(r.R0, 0), C0: max(r.C0, 0), R1: min(r.R1, rows), C1: min(r.C1, cols)}
}

func main() {
	seed := flag.Uint64("seed", 42, "Random seed for deterministic generation")
	robots := flag.Int("robots", 4, "Number of robots")
	rows := flag.Int("rows", 30, "Grid rows")
	cols := flag.Int("cols", 30, "Grid columns")
	clusters := flag.Int("clusters", 3, "Number of dirty clusters")
	clusterSize := flag.Int("cluster-size", 5, "Side of each dirty cluster")
	obstacles := flag.Int("obstacles", 4, "Number of obstacle bars")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate a scaling suite (1, 2, 4, 8, 16 robots)")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "gen_scenarios"})

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Fatal("create output directory", "err", err)
	}

	base := Params{
		Seed:        *seed,
		Robots:      *robots,
		Rows:        *rows,
		Cols:        *cols,
		Clusters:    *clusters,
		ClusterSize: *clusterSize,
		Obstacles:   *obstacles,
	}

	var all []Params
	if *scalingMode {
		for _, n := range []int{1, 2, 4, 8, 16} {
			p := base
			p.Robots = n
			// Grid side grows with sqrt of the fleet
			side := max(*rows, int(math.Ceil(math.Sqrt(float64(n))*15)))
			p.Rows, p.Cols = side, side
			p.Clusters = max(*clusters, n)
			all = append(all, p)
		}
	} else {
		all = append(all, base)
	}

	for _, p := range all {
		s := generate(p)
		inst, err := s.Instance()
		if err != nil {
			logger.Error("invalid scenario", "name", s.Name, "err", err)
			continue
		}
		if lost := inst.UnreachableDirty(); len(lost) > 0 {
			logger.Warn("scenario has unreachable dirt", "name", s.Name, "cells", len(lost))
		}

		path := filepath.Join(*outputDir, s.Name+".scn")
		src := fmt.Sprintf("// generated %s seed=%d\n%s", time.Now().UTC().Format(time.RFC3339), p.Seed, s)
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			logger.Error("write scenario", "path", path, "err", err)
			continue
		}
		logger.Info("generated", "path", path, "robots", s.Robots, "dirty", inst.Grid.DirtyCount())
	}
}
