package swerve

import (
	"context"
	"math"

	"github.com/samber/lo"

	"go.viam.com/swerve/spatialmath"
)

// TeleopSpeeds shapes joystick axes in [-1, 1] into field-relative chassis speeds.
// forward and left translate, turn rotates counterclockwise. Translation is capped at the
// slow velocity while carrying a heavy payload.
func TeleopSpeeds(cfg TeleopConfig, forward, left, turn float64, heavyPayload bool) spatialmath.ChassisSpeeds {
	linear := cfg.MaxVelocity
	if heavyPayload {
		linear = cfg.SlowVelocity
	}
	return spatialmath.ChassisSpeeds{
		Vx:    deadband(forward, cfg.Deadband) * linear,
		Vy:    deadband(left, cfg.Deadband) * linear,
		Omega: deadband(turn, cfg.Deadband) * cfg.MaxAngularVelocity,
	}
}

// deadband zeroes small inputs and rescales the rest so the output is still continuous.
func deadband(v, band float64) float64 {
	v = lo.Clamp(v, -1, 1)
	if math.Abs(v) <= band {
		return 0
	}
	return math.Copysign((math.Abs(v)-band)/(1-band), v)
}

// A Joystick reports operator axes in [-1, 1].
type Joystick interface {
	Axes() (forward, left, turn float64)
}

// TeleopDrive drives the base from a joystick until it is interrupted.
type TeleopDrive struct {
	base     *Base
	joystick Joystick
}

// NewTeleopDrive returns a field-relative teleop maneuver.
func NewTeleopDrive(base *Base, joystick Joystick) *TeleopDrive {
	return &TeleopDrive{base: base, joystick: joystick}
}

// OnStart does nothing.
func (t *TeleopDrive) OnStart(ctx context.Context) {}

// OnTick drives at the current joystick speeds.
func (t *TeleopDrive) OnTick(ctx context.Context) {
	forward, left, turn := t.joystick.Axes()
	t.base.Drive(ctx, TeleopSpeeds(t.base.Config().Teleop, forward, left, turn, t.base.HeavyPayload()), true)
}

// IsFinished is always false.
func (t *TeleopDrive) IsFinished() bool {
	return false
}

// OnFinish stops the base.
func (t *TeleopDrive) OnFinish(ctx context.Context, interrupted bool) {
	t.base.Stop(ctx)
}
