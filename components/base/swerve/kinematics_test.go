package swerve

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"go.viam.com/swerve/spatialmath"
)

var squareLayout = [NumModules]r2.Point{{X: 0.3, Y: 0.3}, {X: 0.3, Y: -0.3}, {X: -0.3, Y: 0.3}, {X: -0.3, Y: -0.3}}

func TestNewKinematics(t *testing.T) {
	_, err := NewKinematics([NumModules]r2.Point{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "rotation")

	_, err = NewKinematics([NumModules]r2.Point{{X: math.NaN()}, {X: 1}, {Y: 1}, {X: 1, Y: 1}})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewKinematics(squareLayout)
	test.That(t, err, test.ShouldBeNil)
}

func TestToModuleStates(t *testing.T) {
	k, err := NewKinematics(squareLayout)
	test.That(t, err, test.ShouldBeNil)

	t.Run("translation", func(t *testing.T) {
		for _, s := range k.ToModuleStates(spatialmath.ChassisSpeeds{Vx: 0, Vy: 2}) {
			test.That(t, s.Speed, test.ShouldAlmostEqual, 2)
			test.That(t, float64(s.Angle), test.ShouldAlmostEqual, 0.25)
		}
	})

	t.Run("rotation", func(t *testing.T) {
		states := k.ToModuleStates(spatialmath.ChassisSpeeds{Omega: 1})
		expected := []float64{0.375, 0.125, -0.375, -0.125}
		for i, s := range states {
			test.That(t, s.Speed, test.ShouldAlmostEqual, 0.3*math.Sqrt2)
			test.That(t, float64(s.Angle), test.ShouldAlmostEqual, expected[i])
		}
	})

	t.Run("rest keeps the last angles", func(t *testing.T) {
		moving := k.ToModuleStates(spatialmath.ChassisSpeeds{Vx: 1, Omega: 1})
		for i, s := range k.ToModuleStates(spatialmath.ChassisSpeeds{}) {
			test.That(t, s.Speed, test.ShouldEqual, 0)
			test.That(t, s.Angle, test.ShouldEqual, moving[i].Angle)
		}
	})
}

func TestToChassisSpeedsInvertsToModuleStates(t *testing.T) {
	k, err := NewKinematics(squareLayout)
	test.That(t, err, test.ShouldBeNil)
	for _, speeds := range []spatialmath.ChassisSpeeds{
		{Vx: 1},
		{Vx: -0.5, Vy: 2, Omega: 0.3},
		{Omega: -3},
	} {
		got := k.ToChassisSpeeds(k.ToModuleStates(speeds))
		test.That(t, cmp.Diff(speeds, got, cmpopts.EquateApprox(0, 1e-9)), test.ShouldBeEmpty)
	}
}

func TestDesaturate(t *testing.T) {
	states := speeds(5, 2.5, -5, 1)
	got := Desaturate(states, 4)
	test.That(t, cmp.Diff(speeds(4, 2, -4, 0.8), got, cmpopts.EquateApprox(0, 1e-12)), test.ShouldBeEmpty)

	test.That(t, Desaturate(speeds(1, 2, 3, -4), 4), test.ShouldResemble, speeds(1, 2, 3, -4))
}
