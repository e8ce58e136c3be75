// Package main runs every planner headless over a directory of scenarios
// and collects cleaning metrics.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/scenario"
	"github.com/elektrokombinacija/cleanfleet/internal/sim"
)

// BenchmarkResult stores results from a single headless run.
type BenchmarkResult struct {
	Timestamp    string
	CommitHash   string
	GoVersion    string
	OS           string
	Arch         string
	Scenario     string
	NumRobots    int
	GridSize     string
	Planner      string
	RuntimeMs    float64
	Clean        bool
	Ticks        int
	TicksToClean int
	InitialDirty int
	Cleaned      int
	Moves        int
	NoPath       int
	Recharges    int
	Stalls       int
	Expanded     int
}

// PlannerMetrics holds per-planner aggregated metrics.
type PlannerMetrics struct {
	Name           string
	TotalRuns      int
	Cleaned        int
	TotalRuntimeMs float64
	TotalTicks     int
	Stalls         int
}

var planners = []string{"astar", "bfs"}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// runPlanner cleans s with the named planner as fast as possible, stopping
// when the surface is clean, after maxTicks, or at the timeout.
func runPlanner(s *scenario.Scenario, name, commit string, maxTicks int, timeout time.Duration) (*BenchmarkResult, error) {
	result := &BenchmarkResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: commit,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Scenario:   s.Name,
		NumRobots:  s.Robots,
		GridSize:   fmt.Sprintf("%dx%d", s.Rows, s.Cols),
		Planner:    name,
	}

	planner, ok := algo.New(name)
	if !ok {
		return result, fmt.Errorf("unknown planner %q", name)
	}
	inst, err := s.Instance()
	if err != nil {
		return result, err
	}

	start := time.Now()
	res, err := sim.RunSimulation(sim.SimulationConfig{
		Instance:      inst,
		Planner:       planner,
		MaxTicks:      maxTicks,
		StopWhenClean: true,
	}, timeout)
	result.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	if res == nil {
		return result, err
	}

	m := res.Metrics
	result.Clean = res.Clean
	result.Ticks = m.Ticks
	result.TicksToClean = m.TicksToClean
	result.InitialDirty = m.InitialDirty
	result.Cleaned = m.CellsCleaned
	result.Moves = m.Moves
	result.NoPath = m.NoPathEvents
	result.Recharges = m.Recharges
	result.Stalls = m.Stalls
	result.Expanded = m.Planner.Expanded

	// Hitting the timeout is a result, not a failure.
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return result, err
}

func writeCSV(results []*BenchmarkResult, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "num_robots", "grid_size", "planner",
		"runtime_ms", "clean", "ticks", "ticks_to_clean",
		"initial_dirty", "cleaned", "moves", "no_path", "recharges", "stalls", "expanded",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, strconv.Itoa(r.NumRobots), r.GridSize, r.Planner,
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.FormatBool(r.Clean),
			strconv.Itoa(r.Ticks), strconv.Itoa(r.TicksToClean),
			strconv.Itoa(r.InitialDirty), strconv.Itoa(r.Cleaned), strconv.Itoa(r.Moves),
			strconv.Itoa(r.NoPath), strconv.Itoa(r.Recharges), strconv.Itoa(r.Stalls),
			strconv.Itoa(r.Expanded),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func summarize(results []*BenchmarkResult) []*PlannerMetrics {
	metrics := make(map[string]*PlannerMetrics)
	for _, r := range results {
		m, ok := metrics[r.Planner]
		if !ok {
			m = &PlannerMetrics{Name: r.Planner}
			metrics[r.Planner] = m
		}
		m.TotalRuns++
		m.Stalls += r.Stalls
		if r.Clean {
			m.Cleaned++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalTicks += r.TicksToClean
		}
	}

	out := make([]*PlannerMetrics, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func printSummary(w io.Writer, results []*BenchmarkResult) {
	fmt.Fprintln(w, "\n=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%-10s %6s %8s %12s %12s %8s\n",
		"Planner", "Runs", "Cleaned", "Avg Time(ms)", "Avg Ticks", "Stalls")
	fmt.Fprintln(w, strings.Repeat("-", 62))

	for _, m := range summarize(results) {
		avgTime, avgTicks := 0.0, 0.0
		if m.Cleaned > 0 {
			avgTime = m.TotalRuntimeMs / float64(m.Cleaned)
			avgTicks = float64(m.TotalTicks) / float64(m.Cleaned)
		}
		fmt.Fprintf(w, "%-10s %6d %8d %12.2f %12.1f %8d\n",
			m.Name, m.TotalRuns, m.Cleaned, avgTime, avgTicks, m.Stalls)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing .scn scenario files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	timeout := flag.Duration("timeout", time.Minute, "Timeout per planner run")
	maxTicks := flag.Int("max-ticks", 100000, "Tick limit per run (0 = no limit)")
	plannerFilter := flag.String("planner", "", "Run only specific planners (comma-separated)")
	robotFilter := flag.Int("robots", 0, "Run only scenarios with this many robots (0 = all)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "run_benchmarks", Level: level})

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		logger.Fatal("create output directory", "err", err)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.scn"))
	if err != nil {
		logger.Fatal("find scenario files", "err", err)
	}
	if len(files) == 0 {
		logger.Fatal("no scenario files found; run gen_scenarios -scaling first", "dir", *inputDir)
	}

	active := planners
	if *plannerFilter != "" {
		active = strings.Split(*plannerFilter, ",")
	}

	commit := getGitCommit()
	logger.Info("running benchmarks", "scenarios", len(files), "planners", len(active), "timeout", *timeout)

	var results []*BenchmarkResult
	for _, file := range files {
		s, err := scenario.Load(file)
		if err != nil {
			logger.Error("load scenario", "path", file, "err", err)
			continue
		}
		if *robotFilter > 0 && s.Robots != *robotFilter {
			continue
		}

		for _, name := range active {
			result, err := runPlanner(s, name, commit, *maxTicks, *timeout)
			if err != nil {
				logger.Error("run failed", "scenario", s.Name, "planner", name, "err", err)
				continue
			}
			results = append(results, result)
			logger.Debug("run", "scenario", s.Name, "planner", name,
				"clean", result.Clean, "ticks", result.TicksToClean, "ms", result.RuntimeMs)
		}
	}

	out, err := os.Create(*outputFile)
	if err != nil {
		logger.Fatal("create results file", "err", err)
	}
	defer out.Close()
	if err := writeCSV(results, out); err != nil {
		logger.Fatal("write results", "err", err)
	}
	logger.Info("results written", "path", *outputFile)

	printSummary(os.Stdout, results)
}
