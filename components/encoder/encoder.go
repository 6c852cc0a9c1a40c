// Package encoder defines the absolute heading sensors mounted on each swerve module.
package encoder

import (
	"context"
	"time"
)

// A Sample is a timestamped sensor reading.
type Sample struct {
	Value float64
	Time  time.Time
}

// LatencyCompensated projects a position sample to now using the latest velocity sample.
// A sample taken in the future (clock skew) is not extrapolated backwards.
func LatencyCompensated(position, velocity Sample, now time.Time) float64 {
	latency := now.Sub(position.Time).Seconds()
	if latency <= 0 {
		return position.Value
	}
	return position.Value + velocity.Value*latency
}

// A HeadingSensor reports the steering angle of a module in turns.
// The reported position already includes the calibration offset.
type HeadingSensor interface {
	// Name returns the name the sensor was configured with.
	Name() string

	// Position returns the last calibrated position sample, in turns.
	Position() Sample

	// Velocity returns the last velocity sample, in turns per second.
	Velocity() Sample

	// SetOffset replaces the calibration offset (in turns) added to the raw reading.
	SetOffset(ctx context.Context, offset float64) error
}
