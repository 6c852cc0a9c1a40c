package control

import (
	"math"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestPIDConfig(t *testing.T) {
	for _, tc := range []struct {
		cfg PIDConfig
		err string
	}{
		{PIDConfig{P: 1}, ""},
		{PIDConfig{I: 0.1, D: 0.01}, ""},
		{PIDConfig{}, "at least one of p, i or d"},
		{PIDConfig{P: -1}, "non-negative"},
		{PIDConfig{P: math.NaN()}, "finite"},
	} {
		_, err := NewPID(tc.cfg, 20*time.Millisecond)
		if tc.err == "" {
			test.That(t, err, test.ShouldBeNil)
		} else {
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		}
	}

	_, err := NewPID(PIDConfig{P: 1}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPIDNext(t *testing.T) {
	t.Run("proportional", func(t *testing.T) {
		pid, err := NewPID(PIDConfig{P: 2}, 20*time.Millisecond)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pid.Next(0, 1), test.ShouldAlmostEqual, 2)
		test.That(t, pid.Next(0.5, 1), test.ShouldAlmostEqual, 1)
		test.That(t, pid.PositionError(), test.ShouldAlmostEqual, 0.5)
	})

	t.Run("derivative", func(t *testing.T) {
		pid, err := NewPID(PIDConfig{D: 1}, 100*time.Millisecond)
		test.That(t, err, test.ShouldBeNil)
		pid.Next(0, 1)
		// error went from 1 to 0.5 over 0.1s
		test.That(t, pid.Next(0.5, 1), test.ShouldAlmostEqual, -5)
	})

	t.Run("integral is clamped", func(t *testing.T) {
		pid, err := NewPID(PIDConfig{I: 1}, time.Second)
		test.That(t, err, test.ShouldBeNil)
		pid.SetIntegratorRange(-0.5, 0.5)
		for i := 0; i < 10; i++ {
			pid.Next(0, 1)
		}
		test.That(t, pid.Next(0, 1), test.ShouldAlmostEqual, 0.5)
	})

	t.Run("continuous", func(t *testing.T) {
		pid, err := NewPID(PIDConfig{P: 1}, 20*time.Millisecond)
		test.That(t, err, test.ShouldBeNil)
		pid.EnableContinuousInput(-math.Pi, math.Pi)
		out := pid.Next(179*math.Pi/180, -179*math.Pi/180)
		test.That(t, out, test.ShouldAlmostEqual, 2*math.Pi/180, 1e-9)
	})

	t.Run("at setpoint", func(t *testing.T) {
		pid, err := NewPID(PIDConfig{P: 1}, 20*time.Millisecond)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pid.AtSetpoint(), test.ShouldBeFalse)
		pid.SetTolerance(0.1, math.Inf(1))
		pid.Next(0.95, 1)
		test.That(t, pid.AtSetpoint(), test.ShouldBeTrue)
		pid.Next(0.5, 1)
		test.That(t, pid.AtSetpoint(), test.ShouldBeFalse)
		pid.Reset()
		test.That(t, pid.AtSetpoint(), test.ShouldBeFalse)
	})
}
