package swerve

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/swerve/spatialmath"
)

// Kinematics converts between chassis speeds and module states for a fixed module layout.
type Kinematics struct {
	translations [NumModules]r2.Point
	// maps stacked module velocity components back to chassis speeds
	forward    *mat.Dense
	lastAngles [NumModules]spatialmath.Turn
}

// NewKinematics returns kinematics for modules mounted at translations. The layout must
// not be degenerate, i.e. the modules cannot all sit on the same point.
func NewKinematics(translations [NumModules]r2.Point) (*Kinematics, error) {
	inverse := mat.NewDense(2*NumModules, 3, nil)
	for i, t := range translations {
		if math.IsNaN(t.X) || math.IsNaN(t.Y) || math.IsInf(t.X, 0) || math.IsInf(t.Y, 0) {
			return nil, errors.Errorf("module %d has a non-finite translation %v", i, t)
		}
		inverse.SetRow(2*i, []float64{1, 0, -t.Y})
		inverse.SetRow(2*i+1, []float64{0, 1, t.X})
	}

	var normal, normalInv mat.Dense
	normal.Mul(inverse.T(), inverse)
	if err := normalInv.Inverse(&normal); err != nil {
		return nil, errors.Wrap(err, "module layout cannot produce rotation")
	}
	forward := mat.NewDense(3, 2*NumModules, nil)
	forward.Mul(&normalInv, inverse.T())

	return &Kinematics{translations: translations, forward: forward}, nil
}

// ToModuleStates returns the state each module needs for the chassis to move at speeds.
// When the chassis is at rest, modules keep their previous angles.
func (k *Kinematics) ToModuleStates(speeds spatialmath.ChassisSpeeds) [NumModules]ModuleState {
	var states [NumModules]ModuleState
	if speeds.Vx == 0 && speeds.Vy == 0 && speeds.Omega == 0 {
		for i := range states {
			states[i].Angle = k.lastAngles[i]
		}
		return states
	}
	for i, t := range k.translations {
		vx := speeds.Vx - speeds.Omega*t.Y
		vy := speeds.Vy + speeds.Omega*t.X
		states[i] = ModuleState{
			Speed: math.Hypot(vx, vy),
			Angle: spatialmath.TurnFromRadians(math.Atan2(vy, vx)),
		}
		k.lastAngles[i] = states[i].Angle
	}
	return states
}

// ToChassisSpeeds returns the least squares chassis speeds that best explain states.
func (k *Kinematics) ToChassisSpeeds(states [NumModules]ModuleState) spatialmath.ChassisSpeeds {
	stacked := mat.NewVecDense(2*NumModules, nil)
	for i, s := range states {
		stacked.SetVec(2*i, s.Speed*s.Angle.Cos())
		stacked.SetVec(2*i+1, s.Speed*s.Angle.Sin())
	}
	var out mat.VecDense
	out.MulVec(k.forward, stacked)
	return spatialmath.ChassisSpeeds{Vx: out.AtVec(0), Vy: out.AtVec(1), Omega: out.AtVec(2)}
}

// Desaturate scales every wheel down by the same factor so none exceeds maxSpeed.
func Desaturate(states [NumModules]ModuleState, maxSpeed float64) [NumModules]ModuleState {
	var magnitudes [NumModules]float64
	for i, s := range states {
		magnitudes[i] = math.Abs(s.Speed)
	}
	fastest := floats.Max(magnitudes[:])
	if fastest <= maxSpeed {
		return states
	}
	for i := range states {
		states[i].Speed *= maxSpeed / fastest
	}
	return states
}
