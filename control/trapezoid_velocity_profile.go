package control

import "math"

// State is a point along a 1-D motion profile.
type State struct {
	Position float64
	Velocity float64
}

// Equal reports whether two states match within floating point noise.
func (s State) Equal(other State) bool {
	const eps = 1e-9
	return math.Abs(s.Position-other.Position) < eps && math.Abs(s.Velocity-other.Velocity) < eps
}

// TrapezoidProfile generates a motion that accelerates at MaxAcceleration, cruises at
// MaxVelocity and decelerates into the goal. It holds no state between calls; the
// caller feeds back the previous setpoint as current.
type TrapezoidProfile struct {
	constraints Constraints
}

// NewTrapezoidProfile returns a profile for the given constraints.
func NewTrapezoidProfile(constraints Constraints) (TrapezoidProfile, error) {
	if err := constraints.Validate(); err != nil {
		return TrapezoidProfile{}, err
	}
	return TrapezoidProfile{constraints: constraints}, nil
}

// Next returns where the profile starting at current and ending at goal will be after t seconds.
func (p TrapezoidProfile) Next(t float64, current, goal State) State {
	dir := 1.0
	if current.Position > goal.Position {
		dir = -1.0
	}
	cur := direct(current, dir)
	end := direct(goal, dir)

	maxVel := p.constraints.MaxVelocity
	maxAcc := p.constraints.MaxAcceleration
	if math.Abs(cur.Velocity) > maxVel {
		cur.Velocity = math.Copysign(maxVel, cur.Velocity)
	}

	// the profile is solved as if it started and ended at rest, then truncated
	cutoffBegin := cur.Velocity / maxAcc
	cutoffDistBegin := cutoffBegin * cutoffBegin * maxAcc / 2.0
	cutoffEnd := end.Velocity / maxAcc
	cutoffDistEnd := cutoffEnd * cutoffEnd * maxAcc / 2.0

	fullTrapezoidDist := cutoffDistBegin + (end.Position - cur.Position) + cutoffDistEnd
	accelTime := maxVel / maxAcc
	fullSpeedDist := fullTrapezoidDist - accelTime*accelTime*maxAcc
	if fullSpeedDist < 0 {
		accelTime = math.Sqrt(fullTrapezoidDist / maxAcc)
		fullSpeedDist = 0
	}

	endAccel := accelTime - cutoffBegin
	endFullSpeed := endAccel + fullSpeedDist/maxVel
	endDecel := endFullSpeed + accelTime - cutoffEnd

	result := cur
	switch {
	case t < endAccel:
		result.Velocity += t * maxAcc
		result.Position += (cur.Velocity + t*maxAcc/2.0) * t
	case t < endFullSpeed:
		result.Velocity = maxVel
		result.Position += (cur.Velocity+endAccel*maxAcc/2.0)*endAccel + maxVel*(t-endAccel)
	case t <= endDecel:
		timeLeft := endDecel - t
		result.Velocity = end.Velocity + timeLeft*maxAcc
		result.Position = end.Position - (end.Velocity+timeLeft*maxAcc/2.0)*timeLeft
	default:
		result = end
	}
	return direct(result, dir)
}

func direct(s State, dir float64) State {
	return State{Position: s.Position * dir, Velocity: s.Velocity * dir}
}
