// Package swerve implements a four-wheel independently steered base: per-module actuation,
// fleet-wide acceleration limiting, inverse and forward kinematics and the chassis facade
// that ties them together.
package swerve

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/swerve/components/encoder"
	"go.viam.com/swerve/components/motor"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/spatialmath"
)

// A ModuleState is a wheel speed in m/s and a steering angle in turns.
type ModuleState struct {
	Speed float64
	Angle spatialmath.Turn
}

// A ModulePosition is the distance a wheel has driven in meters and its steering angle.
type ModulePosition struct {
	Distance float64
	Angle    spatialmath.Turn
}

// Optimize returns the state that reaches desired with the least steering travel from current:
// when the shortest rotation is more than a quarter turn, the wheel is driven backwards
// and pointed the opposite way.
func Optimize(desired ModuleState, current spatialmath.Turn) ModuleState {
	delta := current.ShortestTo(desired.Angle)
	if math.Abs(float64(delta)) > float64(spatialmath.QuarterTurn) {
		return ModuleState{Speed: -desired.Speed, Angle: desired.Angle + spatialmath.HalfTurn}
	}
	return desired
}

// ModuleHardware is the set of devices a module actuates.
type ModuleHardware struct {
	Drive  motor.DriveMotor
	Steer  motor.SteerMotor
	Sensor encoder.HeadingSensor
}

// Module drives one wheel. It is owned by the control tick and is not safe for concurrent use.
type Module struct {
	name        string
	translation r2.Point
	drive       motor.DriveMotor
	steer       motor.SteerMotor
	sensor      encoder.HeadingSensor
	clk         clock.Clock
	logger      logging.Logger

	// meters travelled per drive rotor rotation
	driveCoefficient float64

	offset      float64
	calibrating bool
	target      ModuleState
}

// NewModule configures the heading sensor with the stored calibration offset and returns the module.
func NewModule(
	ctx context.Context,
	cfg ModuleConfig,
	hw ModuleHardware,
	offset float64,
	driveCoefficient float64,
	clk clock.Clock,
	logger logging.Logger,
) (*Module, error) {
	if hw.Drive == nil || hw.Steer == nil || hw.Sensor == nil {
		return nil, errors.Errorf("module %s needs a drive motor, a steer motor and a heading sensor", cfg.Name)
	}
	if !(driveCoefficient > 0) {
		return nil, errors.Errorf("module %s needs a positive drive coefficient, got %v", cfg.Name, driveCoefficient)
	}
	if err := hw.Sensor.SetOffset(ctx, offset); err != nil {
		return nil, errors.Wrapf(err, "module %s failed to apply calibration offset", cfg.Name)
	}
	if err := hw.Steer.SetNeutralMode(ctx, motor.Brake); err != nil {
		return nil, errors.Wrapf(err, "module %s failed to brake steering", cfg.Name)
	}
	return &Module{
		name:             cfg.Name,
		translation:      cfg.Translation(),
		drive:            hw.Drive,
		steer:            hw.Steer,
		sensor:           hw.Sensor,
		clk:              clk,
		logger:           logger,
		driveCoefficient: driveCoefficient,
		offset:           offset,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Translation returns the module's mounting position relative to the robot center.
func (m *Module) Translation() r2.Point {
	return m.translation
}

// Heading returns the steering angle projected to now from the last sensor samples.
func (m *Module) Heading() spatialmath.Turn {
	return spatialmath.Turn(encoder.LatencyCompensated(m.sensor.Position(), m.sensor.Velocity(), m.clk.Now()))
}

// Actuate commands the drive and steering motors toward desired. It is a no-op while calibrating.
func (m *Module) Actuate(ctx context.Context, desired ModuleState) error {
	if m.calibrating {
		return nil
	}
	current := m.Heading()

	target := Optimize(desired, current)
	target.Angle = target.Angle.Normalize()
	// scale down speed while the wheel is still pointing the wrong way
	target.Speed *= current.ShortestTo(target.Angle).Cos()
	m.target = target

	return multierr.Combine(
		m.drive.SetVelocity(ctx, target.Speed/m.driveCoefficient),
		m.steer.SetPosition(ctx, float64(target.Angle)),
	)
}

// TargetState returns the state commanded by the last Actuate.
func (m *Module) TargetState() ModuleState {
	return m.target
}

// State returns the measured wheel speed and steering angle.
func (m *Module) State() ModuleState {
	return ModuleState{
		Speed: m.drive.Velocity().Value * m.driveCoefficient,
		Angle: m.Heading(),
	}
}

// Position returns the measured drive distance and steering angle.
func (m *Module) Position() ModulePosition {
	now := m.clk.Now()
	return ModulePosition{
		Distance: encoder.LatencyCompensated(m.drive.Position(), m.drive.Velocity(), now) * m.driveCoefficient,
		Angle:    m.Heading(),
	}
}

// DriveCurrent returns the drive motor's supply current.
func (m *Module) DriveCurrent() float64 {
	return m.drive.Current()
}

// SteerCurrent returns the steering motor's supply current.
func (m *Module) SteerCurrent() float64 {
	return m.steer.Current()
}

// Offset returns the calibration offset in turns.
func (m *Module) Offset() float64 {
	return m.offset
}

// Calibrating reports whether a calibration is in progress.
func (m *Module) Calibrating() bool {
	return m.calibrating
}

// BeginCalibration zeroes the sensor offset and lets the wheel be turned by hand.
func (m *Module) BeginCalibration(ctx context.Context) error {
	if m.calibrating {
		return nil
	}
	m.calibrating = true
	m.logger.Debugw("beginning calibration", "module", m.name)
	return multierr.Combine(
		m.sensor.SetOffset(ctx, 0),
		m.steer.SetNeutralMode(ctx, motor.Coast),
	)
}

// FinalizeCalibration takes the current hand-aligned reading as zero and returns the new offset.
func (m *Module) FinalizeCalibration(ctx context.Context) (float64, error) {
	if !m.calibrating {
		return m.offset, errors.Errorf("module %s is not calibrating", m.name)
	}
	offset := -m.sensor.Position().Value
	err := multierr.Combine(
		m.sensor.SetOffset(ctx, offset),
		m.steer.SetNeutralMode(ctx, motor.Brake),
	)
	if err != nil {
		return m.offset, multierr.Combine(err, m.CancelCalibration(ctx))
	}
	m.calibrating = false
	m.logger.Infow("calibrated", "module", m.name, "previous_offset", m.offset, "offset", offset)
	m.offset = offset
	return offset, nil
}

// CancelCalibration restores the offset from before BeginCalibration and brakes the steering.
func (m *Module) CancelCalibration(ctx context.Context) error {
	if !m.calibrating {
		return nil
	}
	m.calibrating = false
	m.logger.Debugw("calibration cancelled", "module", m.name)
	return multierr.Combine(
		m.sensor.SetOffset(ctx, m.offset),
		m.steer.SetNeutralMode(ctx, motor.Brake),
	)
}
