package core

import "fmt"

// Instance is a complete cleaning problem: the surface, the shared home
// base, the robots in their fixed update order, and the battery rules.
type Instance struct {
	Grid    *Grid
	Home    Position
	Robots  []*Robot
	Battery BatteryParams
}

// NewInstance creates an instance with a Clean grid and no robots.
func NewInstance(rows, cols int, home Position) (*Instance, error) {
	g, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Grid:    g,
		Home:    home,
		Battery: DefaultBatteryParams(),
	}, nil
}

// AddRobots appends n fully charged robots at home. IDs continue from the
// current robot count so the update order is stable.
func (inst *Instance) AddRobots(n int) {
	for i := 0; i < n; i++ {
		id := RobotID(len(inst.Robots))
		inst.Robots = append(inst.Robots, NewRobot(id, inst.Home, inst.Battery.Capacity))
	}
}

// Validate checks instance consistency.
func (inst *Instance) Validate() error {
	if inst.Grid == nil {
		return fmt.Errorf("%w: no grid", ErrInvalidInstance)
	}
	home, err := inst.Grid.CellState(inst.Home)
	if err != nil {
		return fmt.Errorf("%w: home: %w", ErrInvalidInstance, err)
	}
	if home == Obstacle {
		return fmt.Errorf("%w: home %v is an obstacle", ErrInvalidInstance, inst.Home)
	}

	b := inst.Battery
	if b.Capacity <= 0 || b.RechargeRate <= 0 || b.MoveCost < 0 {
		return fmt.Errorf("%w: battery params %+v", ErrInvalidInstance, b)
	}
	if b.LowThreshold < 0 || b.LowThreshold > b.Capacity {
		return fmt.Errorf("%w: low threshold %d outside [0,%d]", ErrInvalidInstance, b.LowThreshold, b.Capacity)
	}
	// Below one move of charge a robot would run dry before it ever turned home.
	if b.LowThreshold < b.MoveCost {
		return fmt.Errorf("%w: low threshold %d below move cost %d", ErrInvalidInstance, b.LowThreshold, b.MoveCost)
	}

	for i, r := range inst.Robots {
		if r.ID != RobotID(i) {
			return fmt.Errorf("%w: robot at index %d has id %d", ErrInvalidInstance, i, r.ID)
		}
		c, err := inst.Grid.CellState(r.Pos)
		if err != nil {
			return fmt.Errorf("%w: robot %d: %w", ErrInvalidInstance, r.ID, err)
		}
		if c == Obstacle {
			return fmt.Errorf("%w: robot %d starts on obstacle %v", ErrInvalidInstance, r.ID, r.Pos)
		}
		if r.Battery < 0 || r.Battery > b.Capacity {
			return fmt.Errorf("%w: robot %d battery %d", ErrInvalidInstance, r.ID, r.Battery)
		}
	}
	return nil
}

// UnreachableDirty lists Dirty cells that no path from home can reach.
// Robots will never clean them.
func (inst *Instance) UnreachableDirty() []Position {
	reach := inst.Grid.Reachable(inst.Home)
	var out []Position
	for _, p := range inst.Grid.DirtyCells() {
		if !reach.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// RobotByID finds robot by ID.
func (inst *Instance) RobotByID(id RobotID) *Robot {
	for _, r := range inst.Robots {
		if r.ID == id {
			return r
		}
	}
	return nil
}
