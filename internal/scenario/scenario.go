// Package scenario loads cleaning scenarios from a small line-oriented DSL.
//
//	// comments allowed
//	grid 30 30
//	home 15 15
//	robots 4
//	dirty 0:5 0:5
//	dirty -5: -5:
//	obstacle 20:22 3:9
//	threshold 20
//	recharge 5
//	capacity 100
//	cost 1
//	rate 10
//
// Row and column spans are half-open slices. Either bound may be omitted
// and negative bounds count from the far edge; a bare index names one row
// or column. Fills apply in file order, so later lines win.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// ErrInvalid is wrapped by every parse and build error.
var ErrInvalid = errors.New("invalid scenario")

//go:embed default.scn
var defaultSource string

// Region is one fill statement resolved against the grid size.
type Region struct {
	Cell core.Cell
	Rect core.Rect
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name    string
	Rows    int
	Cols    int
	Home    core.Position
	Robots  int
	Battery core.BatteryParams
	Rate    int // ticks per second
	Regions []Region
}

// Default returns the built-in layout.
func Default() *Scenario {
	s, err := Parse("default.scn", defaultSource)
	if err != nil {
		panic(err)
	}
	return s
}

// Load parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(data))
}

// Parse parses src. name is used in error positions.
func Parse(name, src string) (*Scenario, error) {
	f, err := parser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	s := &Scenario{
		Name:    name,
		Robots:  4,
		Battery: core.DefaultBatteryParams(),
		Rate:    10,
	}
	homeSet := false
	for _, st := range f.Statements {
		if err := s.apply(st, &homeSet); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, st.Pos, err)
		}
	}
	if s.Rows == 0 {
		return nil, fmt.Errorf("%w: %s: missing grid statement", ErrInvalid, name)
	}
	if !homeSet {
		s.Home = core.Pos(s.Rows/2, s.Cols/2)
	}
	return s, nil
}

func (s *Scenario) apply(st *statement, homeSet *bool) error {
	switch {
	case st.Grid != nil:
		if s.Rows != 0 {
			return errors.New("grid declared twice")
		}
		if st.Grid.A <= 0 || st.Grid.B <= 0 {
			return fmt.Errorf("grid %dx%d must be positive", st.Grid.A, st.Grid.B)
		}
		s.Rows, s.Cols = st.Grid.A, st.Grid.B

	case st.Home != nil:
		s.Home = core.Pos(st.Home.A, st.Home.B)
		*homeSet = true

	case st.Setting != nil:
		v := st.Setting.Value
		if v < 0 {
			return fmt.Errorf("%s must not be negative", st.Setting.Key)
		}
		switch st.Setting.Key {
		case "robots":
			s.Robots = v
		case "threshold":
			s.Battery.LowThreshold = v
		case "recharge":
			s.Battery.RechargeRate = v
		case "capacity":
			s.Battery.Capacity = v
		case "cost":
			s.Battery.MoveCost = v
		case "rate":
			s.Rate = v
		}

	case st.Fill != nil:
		if s.Rows == 0 {
			return fmt.Errorf("%s before grid", st.Fill.Kind)
		}
		r0, r1, err := resolveSpan(st.Fill.Rows, s.Rows)
		if err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		c0, c1, err := resolveSpan(st.Fill.Cols, s.Cols)
		if err != nil {
			return fmt.Errorf("cols: %w", err)
		}
		s.Regions = append(s.Regions, Region{
			Cell: kindCell(st.Fill.Kind),
			Rect: core.Rect{R0: r0, C0: c0, R1: r1, C1: c1},
		})
	}
	return nil
}

func kindCell(kind string) core.Cell {
	switch kind {
	case "dirty":
		return core.Dirty
	case "obstacle":
		return core.Obstacle
	default:
		return core.Clean
	}
}

// resolveSpan turns a slice like "-5:" or "3" into [lo, hi) within n.
// Slice bounds clamp to the grid; a bare index must be inside it.
func resolveSpan(span string, n int) (lo, hi int, err error) {
	loStr, hiStr, isSlice := strings.Cut(span, ":")
	if !isSlice {
		i, err := strconv.Atoi(span)
		if err != nil {
			return 0, 0, err
		}
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return 0, 0, fmt.Errorf("index %s outside [0,%d)", span, n)
		}
		return i, i + 1, nil
	}

	bound := func(str string, def int) (int, error) {
		if str == "" {
			return def, nil
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			v += n
		}
		return min(max(v, 0), n), nil
	}
	if lo, err = bound(loStr, 0); err != nil {
		return 0, 0, err
	}
	if hi, err = bound(hiStr, n); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// Instance builds a fresh instance: grid, fills in order, then robots at
// home.
func (s *Scenario) Instance() (*core.Instance, error) {
	inst, err := core.NewInstance(s.Rows, s.Cols, s.Home)
	if err != nil {
		return nil, err
	}
	inst.Battery = s.Battery
	for _, r := range s.Regions {
		inst.Grid.Fill(r.Rect, r.Cell)
	}
	inst.AddRobots(s.Robots)
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// String formats s back into DSL source that parses to the same scenario.
func (s *Scenario) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grid %d %d\n", s.Rows, s.Cols)
	fmt.Fprintf(&b, "home %d %d\n", s.Home.Row, s.Home.Col)
	fmt.Fprintf(&b, "robots %d\n", s.Robots)
	fmt.Fprintf(&b, "threshold %d\n", s.Battery.LowThreshold)
	fmt.Fprintf(&b, "recharge %d\n", s.Battery.RechargeRate)
	fmt.Fprintf(&b, "capacity %d\n", s.Battery.Capacity)
	fmt.Fprintf(&b, "cost %d\n", s.Battery.MoveCost)
	fmt.Fprintf(&b, "rate %d\n", s.Rate)
	for _, r := range s.Regions {
		fmt.Fprintf(&b, "%s %d:%d %d:%d\n", strings.ToLower(r.Cell.String()),
			r.Rect.R0, r.Rect.R1, r.Rect.C0, r.Rect.C1)
	}
	return b.String()
}
