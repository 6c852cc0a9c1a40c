package swerve

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/swerve/spatialmath"
)

func TestTeleopSpeeds(t *testing.T) {
	cfg := DefaultConfig().Teleop
	cfg.Deadband = 0.1

	full := TeleopSpeeds(cfg, 1, -1, 0.5, false)
	test.That(t, full.Vx, test.ShouldAlmostEqual, cfg.MaxVelocity)
	test.That(t, full.Vy, test.ShouldAlmostEqual, -cfg.MaxVelocity)
	test.That(t, full.Omega, test.ShouldAlmostEqual, cfg.MaxAngularVelocity*4/9)

	slow := TeleopSpeeds(cfg, 1, 0, 0, true)
	test.That(t, slow.Vx, test.ShouldAlmostEqual, cfg.SlowVelocity)

	test.That(t, TeleopSpeeds(cfg, 0.05, -0.1, 0.09, false), test.ShouldResemble, spatialmath.ChassisSpeeds{})
	test.That(t, TeleopSpeeds(cfg, 3, 0, 0, false).Vx, test.ShouldAlmostEqual, cfg.MaxVelocity)
}

type fixedJoystick struct {
	forward, left, turn float64
}

func (j fixedJoystick) Axes() (float64, float64, float64) { return j.forward, j.left, j.turn }

func TestTeleopDrive(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)
	drive := NewTeleopDrive(b.Base, fixedJoystick{forward: 1})
	drive.OnStart(ctx)
	for i := 0; i < 30; i++ {
		b.step()
		drive.OnTick(ctx)
	}
	test.That(t, drive.IsFinished(), test.ShouldBeFalse)
	test.That(t, b.limiter.Previous()[1].Speed, test.ShouldAlmostEqual, DefaultMaxVelocity, 1e-9)

	drive.OnFinish(ctx, true)
	for _, s := range b.limiter.Previous() {
		test.That(t, s.Speed, test.ShouldEqual, 0)
	}
}
