package control

import (
	"time"

	"go.viam.com/swerve/spatialmath"
)

// ProfiledPID is a PID loop whose setpoint follows a trapezoidal profile toward a goal.
// Seeding it with the measured position and velocity (Reset) gives a jerk-free start,
// and moving the goal (SetGoal) keeps the current setpoint so the output stays continuous.
type ProfiledPID struct {
	pid     *PID
	profile TrapezoidProfile

	goal     State
	setpoint State

	continuous         bool
	minInput, maxInput float64
}

// NewProfiledPID returns a profiled loop stepped every period.
func NewProfiledPID(gains PIDConfig, constraints Constraints, period time.Duration) (*ProfiledPID, error) {
	pid, err := NewPID(gains, period)
	if err != nil {
		return nil, err
	}
	profile, err := NewTrapezoidProfile(constraints)
	if err != nil {
		return nil, err
	}
	return &ProfiledPID{pid: pid, profile: profile}, nil
}

// EnableContinuousInput makes the loop wrap between minInput and maxInput.
func (c *ProfiledPID) EnableContinuousInput(minInput, maxInput float64) {
	c.pid.EnableContinuousInput(minInput, maxInput)
	c.continuous = true
	c.minInput = minInput
	c.maxInput = maxInput
}

// SetTolerance sets the position and velocity tolerances used by AtGoal.
func (c *ProfiledPID) SetTolerance(pos, vel float64) {
	c.pid.SetTolerance(pos, vel)
}

// Reset seeds the profile with the measured state and clears the PID history.
func (c *ProfiledPID) Reset(position, velocity float64) {
	c.pid.Reset()
	c.setpoint = State{Position: position, Velocity: velocity}
}

// SetGoal moves the goal to a stationary position. The current setpoint is kept.
func (c *ProfiledPID) SetGoal(position float64) {
	c.goal = State{Position: position}
}

// Goal returns the goal state.
func (c *ProfiledPID) Goal() State {
	return c.goal
}

// Setpoint returns the profile setpoint from the last step.
func (c *ProfiledPID) Setpoint() State {
	return c.setpoint
}

// Next advances the profile one period and returns the PID output for measurement.
func (c *ProfiledPID) Next(measurement float64) float64 {
	if c.continuous {
		bound := (c.maxInput - c.minInput) / 2
		goalMin := spatialmath.InputModulus(c.goal.Position-measurement, -bound, bound)
		setpointMin := spatialmath.InputModulus(c.setpoint.Position-measurement, -bound, bound)
		c.goal.Position = goalMin + measurement
		c.setpoint.Position = setpointMin + measurement
	}

	c.setpoint = c.profile.Next(c.pid.period, c.setpoint, c.goal)
	return c.pid.Next(measurement, c.setpoint.Position)
}

// AtSetpoint reports whether the measurement tracks the current setpoint.
func (c *ProfiledPID) AtSetpoint() bool {
	return c.pid.AtSetpoint()
}

// AtGoal reports whether the profile has finished and the measurement is within tolerance.
func (c *ProfiledPID) AtGoal() bool {
	return c.AtSetpoint() && c.goal.Equal(c.setpoint)
}

// PositionError returns the error computed by the last step.
func (c *ProfiledPID) PositionError() float64 {
	return c.pid.PositionError()
}
