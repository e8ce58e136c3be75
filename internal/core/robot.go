package core

// RobotID is a unique robot identifier. It doubles as the robot's place in
// the fixed update order.
type RobotID int

// BatteryParams are the static battery rules shared by every robot.
type BatteryParams struct {
	LowThreshold int // Below this a Working robot heads home
	RechargeRate int // Charge added per Recharging tick
	Capacity     int // Battery ceiling
	MoveCost     int // Charge spent per Working/Returning tick that plans a move
}

// DefaultBatteryParams returns the stock 20/5/100/1 battery rules.
func DefaultBatteryParams() BatteryParams {
	return BatteryParams{
		LowThreshold: 20,
		RechargeRate: 5,
		Capacity:     100,
		MoveCost:     1,
	}
}

// Robot is the mutable per-robot record updated once per tick.
type Robot struct {
	ID      RobotID
	Pos     Position
	Battery int // 0 <= Battery <= capacity
	State   RobotState
	Target  *Position // nil when the robot has nothing to head for
}

// NewRobot creates a fully charged Working robot at home.
func NewRobot(id RobotID, home Position, capacity int) *Robot {
	return &Robot{
		ID:      id,
		Pos:     home,
		Battery: capacity,
		State:   Working,
	}
}

// HasTarget reports whether the robot currently has a destination.
func (r *Robot) HasTarget() bool {
	return r.Target != nil
}

// SetTarget points the robot at p.
func (r *Robot) SetTarget(p Position) {
	r.Target = &p
}

// ClearTarget drops the current destination.
func (r *Robot) ClearTarget() {
	r.Target = nil
}

// IsLowBattery returns true below the Returning threshold.
func (r *Robot) IsLowBattery(p BatteryParams) bool {
	return r.Battery < p.LowThreshold
}

// Exhausted returns true when the battery is empty.
func (r *Robot) Exhausted() bool {
	return r.Battery <= 0
}

// Drain reduces the battery, never below zero.
func (r *Robot) Drain(amount int) {
	r.Battery -= amount
	if r.Battery < 0 {
		r.Battery = 0
	}
}

// Charge adds to the battery, never above capacity. It reports whether the
// battery is now full.
func (r *Robot) Charge(amount, capacity int) bool {
	r.Battery += amount
	if r.Battery >= capacity {
		r.Battery = capacity
		return true
	}
	return false
}

// BatteryPercentage returns current battery level as percentage.
func (r *Robot) BatteryPercentage(capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(r.Battery) / float64(capacity) * 100.0
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (r *Robot) Clone() Robot {
	c := *r
	if r.Target != nil {
		t := *r.Target
		c.Target = &t
	}
	return c
}
