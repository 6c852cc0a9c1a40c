package fake

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/swerve/components/motor"
	"go.viam.com/swerve/logging"
)

func TestVelocity(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	m := NewMotor("drive", clk, logging.NewTestLogger(t))

	test.That(t, m.SetVelocity(ctx, 2), test.ShouldBeNil)
	clk.Add(500 * time.Millisecond)
	m.Step(500 * time.Millisecond)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 1)
	test.That(t, m.Velocity().Value, test.ShouldAlmostEqual, 2)
	test.That(t, m.Position().Time, test.ShouldEqual, clk.Now())
	test.That(t, m.Current(), test.ShouldBeGreaterThan, neutralCurrentAmps)

	setpoint, position := m.Setpoint()
	test.That(t, setpoint, test.ShouldEqual, 2)
	test.That(t, position, test.ShouldBeFalse)
}

func TestPosition(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	m := NewMotor("steer", clk, logging.NewTestLogger(t))
	m.MaxRPS = 1

	test.That(t, m.SetPosition(ctx, 0.4), test.ShouldBeNil)
	m.Step(100 * time.Millisecond)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 0.1)
	m.Step(time.Second)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 0.4)

	// -0.4 is 0.2 turns ahead
	test.That(t, m.SetPosition(ctx, -0.4), test.ShouldBeNil)
	m.Step(time.Second)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 0.6)

	// setpoints are in sensor turns
	m.SetFeedbackOffset(0.1)
	test.That(t, m.SetPosition(ctx, 0), test.ShouldBeNil)
	m.Step(time.Second)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 0.9)

	velocity, positionCmds := m.CommandCounts()
	test.That(t, velocity, test.ShouldEqual, 0)
	test.That(t, positionCmds, test.ShouldEqual, 3)
}

func TestNeutralMode(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	m := NewMotor("steer", clk, logging.NewTestLogger(t))
	test.That(t, m.NeutralMode(), test.ShouldEqual, motor.Brake)

	test.That(t, m.SetVelocity(ctx, 1), test.ShouldBeNil)
	m.Step(time.Second)
	test.That(t, m.SetNeutralMode(ctx, motor.Coast), test.ShouldBeNil)
	m.Step(time.Second)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 2)
	test.That(t, m.Current(), test.ShouldEqual, neutralCurrentAmps)

	m.Turn(0.25)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 2.25)

	test.That(t, m.SetNeutralMode(ctx, motor.Brake), test.ShouldBeNil)
	m.Step(time.Second)
	test.That(t, m.Velocity().Value, test.ShouldEqual, 0)
	test.That(t, m.Position().Value, test.ShouldAlmostEqual, 2.25)

	err := m.SetNeutralMode(ctx, motor.NeutralMode(7))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, m.NeutralMode(), test.ShouldEqual, motor.Brake)
}

func TestInjectError(t *testing.T) {
	ctx := context.Background()
	m := NewMotor("drive", clock.NewMock(), logging.NewTestLogger(t))
	m.InjectError(errors.New("bus off"))

	err := m.SetVelocity(ctx, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "drive")
	test.That(t, err.Error(), test.ShouldContainSubstring, "bus off")
	test.That(t, m.SetPosition(ctx, 1), test.ShouldNotBeNil)
	test.That(t, m.SetNeutralMode(ctx, motor.Coast), test.ShouldNotBeNil)

	m.InjectError(nil)
	test.That(t, m.SetVelocity(ctx, 1), test.ShouldBeNil)
	velocity, _ := m.CommandCounts()
	test.That(t, velocity, test.ShouldEqual, 1)
}
