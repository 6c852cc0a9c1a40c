// Package motor defines the drive and steering actuators of a swerve module.
package motor

import (
	"context"

	"go.viam.com/swerve/components/encoder"
)

// NeutralMode is what a motor does when it is not being driven.
type NeutralMode int

const (
	// Brake shorts the windings so the output holds its position.
	Brake NeutralMode = iota
	// Coast lets the output spin freely.
	Coast
)

func (m NeutralMode) String() string {
	switch m {
	case Brake:
		return "brake"
	case Coast:
		return "coast"
	default:
		return "unknown"
	}
}

// A Motor is the part shared by drive and steering actuators. The getters return cached
// status samples and never touch the bus.
type Motor interface {
	// Name returns the name the motor was configured with.
	Name() string

	// SetNeutralMode switches between brake and coast.
	SetNeutralMode(ctx context.Context, mode NeutralMode) error

	// Position returns the last rotor position sample in rotations.
	Position() encoder.Sample

	// Velocity returns the last rotor velocity sample in rotations per second.
	Velocity() encoder.Sample

	// Current returns the last supply current sample in amps.
	Current() float64
}

// A DriveMotor is commanded with a closed-loop velocity.
type DriveMotor interface {
	Motor

	// SetVelocity sets the velocity setpoint in rotations per second.
	SetVelocity(ctx context.Context, rps float64) error
}

// A SteerMotor is commanded with a closed-loop position, measured by the module's heading sensor.
type SteerMotor interface {
	Motor

	// SetPosition sets the position setpoint in turns of the heading sensor.
	SetPosition(ctx context.Context, turns float64) error
}
