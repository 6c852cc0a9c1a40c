package control

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/swerve/spatialmath"
)

// PID is a discrete PID controller stepped at a fixed period.
// It is not safe for concurrent use; it is owned by a single control tick.
type PID struct {
	cfg    PIDConfig
	period float64

	continuous         bool
	minInput, maxInput float64

	// integral term is clamped to [minIntegral, maxIntegral] in output units
	minIntegral, maxIntegral float64

	posTolerance float64
	velTolerance float64

	err      float64
	prevErr  float64
	velErr   float64
	totalErr float64

	haveSetpoint    bool
	haveMeasurement bool
}

// NewPID returns a PID stepped every period.
func NewPID(cfg PIDConfig, period time.Duration) (*PID, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, errors.Errorf("pid period must be positive, got %v", period)
	}
	return &PID{
		cfg:          cfg,
		period:       period.Seconds(),
		minIntegral:  -1,
		maxIntegral:  1,
		posTolerance: 0.05,
		velTolerance: math.Inf(1),
	}, nil
}

// EnableContinuousInput treats minInput and maxInput as the same point, so the error is
// always the shortest way around.
func (p *PID) EnableContinuousInput(minInput, maxInput float64) {
	p.continuous = true
	p.minInput = minInput
	p.maxInput = maxInput
}

// SetIntegratorRange bounds the contribution of the integral term.
func (p *PID) SetIntegratorRange(minIntegral, maxIntegral float64) {
	p.minIntegral = minIntegral
	p.maxIntegral = maxIntegral
}

// SetTolerance sets the position and velocity error tolerances used by AtSetpoint.
func (p *PID) SetTolerance(pos, vel float64) {
	p.posTolerance = pos
	p.velTolerance = vel
}

// Next steps the controller with a new measurement against setpoint and returns the output.
func (p *PID) Next(measurement, setpoint float64) float64 {
	p.haveMeasurement = true
	p.haveSetpoint = true

	p.prevErr = p.err
	p.err = p.wrapError(setpoint - measurement)
	p.velErr = (p.err - p.prevErr) / p.period

	if p.cfg.I != 0 {
		p.totalErr = lo.Clamp(p.totalErr+p.err*p.period, p.minIntegral/p.cfg.I, p.maxIntegral/p.cfg.I)
	}

	return p.cfg.P*p.err + p.cfg.I*p.totalErr + p.cfg.D*p.velErr
}

// AtSetpoint reports whether the last error is within tolerance.
func (p *PID) AtSetpoint() bool {
	return p.haveMeasurement && p.haveSetpoint &&
		math.Abs(p.err) < p.posTolerance &&
		math.Abs(p.velErr) < p.velTolerance
}

// PositionError returns the error computed by the last step.
func (p *PID) PositionError() float64 {
	return p.err
}

// Reset clears accumulated state.
func (p *PID) Reset() {
	p.err = 0
	p.prevErr = 0
	p.velErr = 0
	p.totalErr = 0
	p.haveMeasurement = false
}

func (p *PID) wrapError(e float64) float64 {
	if !p.continuous {
		return e
	}
	bound := (p.maxInput - p.minInput) / 2
	return spatialmath.InputModulus(e, -bound, bound)
}
