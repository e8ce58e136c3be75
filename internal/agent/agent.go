// Package agent implements the per-robot behavioural state machine.
//
// Each tick an Agent evaluates exactly one row of its transition table:
// it may query the surface for work, plan a fresh path, advance at most one
// cell along it, spend or regain battery, and clean the cell it lands on.
// Agents see the grid only through Surface, so every point where robots
// contend for shared state is an explicit method call.
package agent

import (
	"github.com/elektrokombinacija/cleanfleet/internal/algo"
	"github.com/elektrokombinacija/cleanfleet/internal/core"
)

// Surface is the grid capability an agent is allowed to use.
type Surface interface {
	algo.Terrain
	ClearCell(p core.Position) error
	FindNearestDirty(from core.Position) (core.Position, bool)
}

// Report describes what a single Update did.
type Report struct {
	Robot   core.RobotID
	From    core.RobotState
	To      core.RobotState
	Moved   bool           // Position changed this tick
	Cleaned *core.Position // Cell cleared this tick
	NoPath  bool           // Planner found no route; retried next tick
	Stalled bool           // Battery empty away from the goal; robot halted
	Charged int            // Battery gained while Recharging
	Spent   int            // Battery spent while moving
}

// Transitioned reports whether the robot changed state.
func (r Report) Transitioned() bool {
	return r.From != r.To
}

// Agent drives one robot.
type Agent struct {
	robot   *core.Robot
	home    core.Position
	battery core.BatteryParams
	planner algo.Planner
}

// New creates an agent for robot r.
func New(r *core.Robot, home core.Position, battery core.BatteryParams, planner algo.Planner) *Agent {
	if planner == nil {
		planner = algo.NewAStar()
	}
	return &Agent{
		robot:   r,
		home:    home,
		battery: battery,
		planner: planner,
	}
}

// Robot returns the robot this agent drives.
func (a *Agent) Robot() *core.Robot {
	return a.robot
}

// Update runs one tick of the state machine against s.
func (a *Agent) Update(s Surface) Report {
	r := a.robot
	rep := Report{Robot: r.ID, From: r.State}

	switch r.State {
	case core.Working:
		a.work(s, &rep)
	case core.Returning:
		a.returnHome(s, &rep)
	case core.Recharging:
		a.recharge(&rep)
	case core.Idle:
		a.idle(s, &rep)
	}

	rep.To = r.State
	return rep
}

func (a *Agent) work(s Surface, rep *Report) {
	r := a.robot
	if r.IsLowBattery(a.battery) {
		r.State = core.Returning
		return
	}

	if !r.HasTarget() {
		target, ok := s.FindNearestDirty(r.Pos)
		if !ok {
			r.State = core.Idle
			return
		}
		r.SetTarget(target)
	}

	target := *r.Target
	if !a.advance(s, target, a.battery.MoveCost, rep) {
		return
	}
	if r.Pos == target {
		// An earlier robot may have got here first; the clear is then a no-op.
		if c, err := s.CellState(target); err == nil && c == core.Dirty {
			if err := s.ClearCell(target); err == nil {
				rep.Cleaned = &target
			}
		}
		r.ClearTarget()
	}
}

func (a *Agent) returnHome(s Surface, rep *Report) {
	r := a.robot
	if !a.advance(s, a.home, a.battery.MoveCost, rep) {
		return
	}
	if r.Pos == a.home {
		r.ClearTarget()
		r.State = core.Recharging
	}
}

func (a *Agent) recharge(rep *Report) {
	r := a.robot
	before := r.Battery
	full := r.Battery >= a.battery.Capacity || r.Charge(a.battery.RechargeRate, a.battery.Capacity)
	rep.Charged = r.Battery - before
	if full {
		r.State = core.Working
	}
}

func (a *Agent) idle(s Surface, rep *Report) {
	r := a.robot

	// Idle is not terminal: if work shows up again, go back to it.
	if _, ok := s.FindNearestDirty(r.Pos); ok {
		r.ClearTarget()
		r.State = core.Working
		return
	}

	if !r.HasTarget() {
		r.SetTarget(a.home)
	}
	target := *r.Target
	if !a.advance(s, target, 0, rep) {
		return
	}
	if r.Pos == target {
		r.ClearTarget()
	}
}

// advance plans a fresh path to goal and moves at most one cell along it,
// spending cost battery. It returns false when the robot could not act:
// no path exists, or the battery is empty and a move would be needed.
func (a *Agent) advance(s Surface, goal core.Position, cost int, rep *Report) bool {
	r := a.robot
	path := a.planner.FindPath(r.Pos, goal, s)
	next, ok := path.Next()
	if !ok {
		rep.NoPath = true
		return false
	}
	if cost > 0 && next != r.Pos && r.Exhausted() {
		rep.Stalled = true
		return false
	}

	if next != r.Pos {
		r.Pos = next
		rep.Moved = true
	}
	if cost > 0 {
		before := r.Battery
		r.Drain(cost)
		rep.Spent = before - r.Battery
	}
	return true
}
