package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose2D is a field-referenced planar pose. Theta is in radians, counter-clockwise positive.
type Pose2D struct {
	Point r2.Point
	Theta float64
}

// NewPose2D builds a pose from its components.
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{Point: r2.Point{X: x, Y: y}, Theta: theta}
}

// X returns the x coordinate in meters.
func (p Pose2D) X() float64 { return p.Point.X }

// Y returns the y coordinate in meters.
func (p Pose2D) Y() float64 { return p.Point.Y }

// DistanceTo returns the Euclidean distance between the translations of two poses.
func (p Pose2D) DistanceTo(other Pose2D) float64 {
	return p.Point.Sub(other.Point).Norm()
}

// RotateBy returns a copy of the pose with theta offset by rad.
func (p Pose2D) RotateBy(rad float64) Pose2D {
	return Pose2D{Point: p.Point, Theta: p.Theta + rad}
}

// IsFinite reports whether every component of the pose is a finite number.
func (p Pose2D) IsFinite() bool {
	for _, v := range []float64{p.Point.X, p.Point.Y, p.Theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Pose2D) String() string {
	return fmt.Sprintf("(x: %.3f, y: %.3f, theta: %.1fdeg)", p.Point.X, p.Point.Y, p.Theta*180/math.Pi)
}

// RotatePoint rotates v counter-clockwise by rad.
func RotatePoint(v r2.Point, rad float64) r2.Point {
	s, c := math.Sincos(rad)
	return r2.Point{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// ChassisSpeeds is a planar velocity. Vx and Vy are in m/s and Omega in rad/s.
// Whether it is robot-relative or field-relative depends on the caller.
type ChassisSpeeds struct {
	Vx    float64
	Vy    float64
	Omega float64
}

// Linear returns the translational component as a vector.
func (s ChassisSpeeds) Linear() r2.Point {
	return r2.Point{X: s.Vx, Y: s.Vy}
}

// FieldToRobot converts field-relative speeds to the robot frame of a robot facing heading (radians).
func (s ChassisSpeeds) FieldToRobot(heading float64) ChassisSpeeds {
	v := RotatePoint(s.Linear(), -heading)
	return ChassisSpeeds{Vx: v.X, Vy: v.Y, Omega: s.Omega}
}

// RobotToField converts robot-relative speeds to the field frame of a robot facing heading (radians).
func (s ChassisSpeeds) RobotToField(heading float64) ChassisSpeeds {
	v := RotatePoint(s.Linear(), heading)
	return ChassisSpeeds{Vx: v.X, Vy: v.Y, Omega: s.Omega}
}
