// Package fake implements a simulated absolute heading sensor.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/swerve/components/encoder"
	fakemotor "go.viam.com/swerve/components/motor/fake"
	"go.viam.com/swerve/spatialmath"
)

var _ encoder.HeadingSensor = &Encoder{}

// An Encoder reads the steering rotor of a fake motor as an absolute angle in [-0.5, 0.5) turns.
// It closes the motor's position loop, so changing the offset moves the frame the motor's
// setpoints are interpreted in.
type Encoder struct {
	mu     sync.Mutex
	name   string
	steer  *fakemotor.Motor
	offset float64
	err    error
}

// NewEncoder attaches a sensor to steer with the given calibration offset.
func NewEncoder(name string, steer *fakemotor.Motor, offset float64) *Encoder {
	steer.SetFeedbackOffset(offset)
	return &Encoder{name: name, steer: steer, offset: offset}
}

// Name returns the sensor's name.
func (e *Encoder) Name() string {
	return e.name
}

// Position returns the calibrated angle.
func (e *Encoder) Position() encoder.Sample {
	e.mu.Lock()
	offset := e.offset
	e.mu.Unlock()
	raw := e.steer.Position()
	return encoder.Sample{
		Value: float64(spatialmath.Turn(raw.Value + offset).Wrap()),
		Time:  raw.Time,
	}
}

// Velocity returns the steering velocity.
func (e *Encoder) Velocity() encoder.Sample {
	return e.steer.Velocity()
}

// Offset returns the applied calibration offset.
func (e *Encoder) Offset() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// SetOffset replaces the calibration offset.
func (e *Encoder) SetOffset(ctx context.Context, offset float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return errors.Wrapf(e.err, "encoder named %s rejected offset", e.name)
	}
	e.offset = offset
	e.steer.SetFeedbackOffset(offset)
	return nil
}

// InjectError makes every following SetOffset fail with err. Pass nil to clear it.
func (e *Encoder) InjectError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}
