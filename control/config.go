// Package control implements the feedback building blocks used by the drivetrain:
// a PID controller, a trapezoidal motion profile and a profiled PID loop that chases
// the profile's moving setpoint.
package control

import (
	"math"

	"github.com/pkg/errors"
)

// PIDConfig is the set of gains for a PID loop.
type PIDConfig struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

// Validate ensures the gains are usable.
func (cfg PIDConfig) Validate() error {
	for _, g := range []float64{cfg.P, cfg.I, cfg.D} {
		if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
			return errors.Errorf("pid gains must be finite and non-negative, got %+v", cfg)
		}
	}
	if cfg.P == 0 && cfg.I == 0 && cfg.D == 0 {
		return errors.New("pid loop should have at least one of p, i or d set")
	}
	return nil
}

// Constraints bound the velocity and acceleration of a trapezoidal profile.
type Constraints struct {
	MaxVelocity     float64 `json:"max_vel"`
	MaxAcceleration float64 `json:"max_acc"`
}

// Validate ensures the constraints describe a reachable profile.
func (c Constraints) Validate() error {
	if !(c.MaxVelocity > 0) || math.IsInf(c.MaxVelocity, 0) {
		return errors.Errorf("trapezoidal profile needs a positive max_vel, got %v", c.MaxVelocity)
	}
	if !(c.MaxAcceleration > 0) || math.IsInf(c.MaxAcceleration, 0) {
		return errors.Errorf("trapezoidal profile needs a positive max_acc, got %v", c.MaxAcceleration)
	}
	return nil
}
