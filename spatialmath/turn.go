package spatialmath

import "math"

// Turn is an angle expressed in full rotations. One Turn is 360 degrees.
// Arithmetic on Turn never wraps implicitly; call Normalize or Wrap before
// comparing or actuating an angle.
type Turn float64

// HalfTurn and QuarterTurn are the rotations used by steering optimization.
const (
	HalfTurn    Turn = 0.5
	QuarterTurn Turn = 0.25
)

// TurnFromRadians converts radians to turns.
func TurnFromRadians(rad float64) Turn {
	return Turn(rad / (2 * math.Pi))
}

// TurnFromDegrees converts degrees to turns.
func TurnFromDegrees(deg float64) Turn {
	return Turn(deg / 360)
}

// Radians returns the angle in radians.
func (t Turn) Radians() float64 {
	return float64(t) * 2 * math.Pi
}

// Degrees returns the angle in degrees.
func (t Turn) Degrees() float64 {
	return float64(t) * 360
}

// Cos returns the cosine of the angle.
func (t Turn) Cos() float64 {
	return math.Cos(t.Radians())
}

// Sin returns the sine of the angle.
func (t Turn) Sin() float64 {
	return math.Sin(t.Radians())
}

// Normalize maps the angle into [0, 1).
func (t Turn) Normalize() Turn {
	n := math.Mod(float64(t), 1)
	if n < 0 {
		n++
	}
	// math.Mod of a tiny negative value can round up to exactly 1
	if n >= 1 {
		n = 0
	}
	return Turn(n)
}

// Wrap maps the angle into [-0.5, 0.5).
func (t Turn) Wrap() Turn {
	return Turn(InputModulus(float64(t), -0.5, 0.5))
}

// ShortestTo returns the signed rotation that carries t onto other along the
// shorter way around. The result lies in [-0.5, 0.5).
func (t Turn) ShortestTo(other Turn) Turn {
	return (other - t).Wrap()
}

// InputModulus wraps value into [minimum, maximum).
func InputModulus(value, minimum, maximum float64) float64 {
	span := maximum - minimum
	v := math.Mod(value-minimum, span)
	if v < 0 {
		v += span
	}
	if v >= span {
		v = 0
	}
	return v + minimum
}

// AngleModulus wraps an angle in radians into [-pi, pi).
func AngleModulus(rad float64) float64 {
	return InputModulus(rad, -math.Pi, math.Pi)
}

// AngleError returns the shortest signed rotation, in radians, from measured to goal.
func AngleError(goal, measured float64) float64 {
	return AngleModulus(goal - measured)
}
