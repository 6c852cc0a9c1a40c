// Package fake implements a simulated swerve module motor.
package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/swerve/components/encoder"
	"go.viam.com/swerve/components/motor"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/spatialmath"
)

const (
	defaultMaxRPS      = 100
	ampsPerRPS         = 0.4
	ampsPerRPSPerSec   = 0.05
	neutralCurrentAmps = 0.1
)

type controlMode int

const (
	modeNeutral controlMode = iota
	modeVelocity
	modePosition
)

var (
	_ motor.DriveMotor = &Motor{}
	_ motor.SteerMotor = &Motor{}
)

// A Motor is a simulated closed-loop motor. Velocity setpoints are tracked instantly;
// position setpoints are approached at MaxRPS along the shorter way around a turn.
// Step advances the simulation.
type Motor struct {
	mu     sync.Mutex
	name   string
	clk    clock.Clock
	logger logging.Logger

	// MaxRPS bounds how fast a position setpoint is approached.
	MaxRPS float64

	mode        controlMode
	neutral     motor.NeutralMode
	velocity    float64
	position    float64
	accel       float64
	target      float64
	feedbackOff float64
	sampleTime  time.Time

	velocityCmds int
	positionCmds int
	err          error
}

// NewMotor returns a stopped motor in brake mode.
func NewMotor(name string, clk clock.Clock, logger logging.Logger) *Motor {
	return &Motor{
		name:       name,
		clk:        clk,
		logger:     logger,
		MaxRPS:     defaultMaxRPS,
		sampleTime: clk.Now(),
	}
}

// Name returns the motor's name.
func (m *Motor) Name() string {
	return m.name
}

// SetVelocity sets a velocity setpoint in rotations per second.
func (m *Motor) SetVelocity(ctx context.Context, rps float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return motor.NewCommandError(m.name, m.err)
	}
	m.mode = modeVelocity
	m.target = rps
	m.velocityCmds++
	return nil
}

// SetPosition sets a position setpoint in feedback-sensor turns.
func (m *Motor) SetPosition(ctx context.Context, turns float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return motor.NewCommandError(m.name, m.err)
	}
	m.mode = modePosition
	m.target = turns
	m.positionCmds++
	return nil
}

// SetNeutralMode switches between brake and coast. Coasting drops any active setpoint.
func (m *Motor) SetNeutralMode(ctx context.Context, mode motor.NeutralMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return motor.NewCommandError(m.name, m.err)
	}
	switch mode {
	case motor.Brake, motor.Coast:
	default:
		return motor.NewUnsupportedNeutralModeError(m.name, mode)
	}
	m.logger.Debugw("neutral mode changed", "motor", m.name, "mode", mode.String())
	m.neutral = mode
	if mode == motor.Coast {
		m.mode = modeNeutral
	}
	return nil
}

// NeutralMode returns the current neutral mode.
func (m *Motor) NeutralMode() motor.NeutralMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.neutral
}

// SetFeedbackOffset tells the motor how its rotor relates to the heading sensor that closes
// its position loop: sensor = rotor + offset.
func (m *Motor) SetFeedbackOffset(offset float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedbackOff = offset
}

// Turn moves the rotor by turns without commanding it, as if it were turned by hand.
func (m *Motor) Turn(turns float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position += turns
}

// InjectError makes every following command fail with err. Pass nil to clear it.
func (m *Motor) InjectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Step advances the simulation by dt.
func (m *Motor) Step(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secs := dt.Seconds()
	prev := m.velocity
	switch m.mode {
	case modeVelocity:
		m.velocity = m.target
	case modePosition:
		sensor := m.position + m.feedbackOff
		travel := float64(spatialmath.Turn(sensor).ShortestTo(spatialmath.Turn(m.target)))
		maxTravel := m.MaxRPS * secs
		if math.Abs(travel) > maxTravel {
			travel = math.Copysign(maxTravel, travel)
		}
		if secs > 0 {
			m.velocity = travel / secs
		}
	case modeNeutral:
		if m.neutral == motor.Brake {
			m.velocity = 0
		}
	}
	m.position += m.velocity * secs
	if secs > 0 {
		m.accel = (m.velocity - prev) / secs
	}
	m.sampleTime = m.clk.Now()
}

// Position returns the rotor position sample.
func (m *Motor) Position() encoder.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return encoder.Sample{Value: m.position, Time: m.sampleTime}
}

// Velocity returns the rotor velocity sample.
func (m *Motor) Velocity() encoder.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return encoder.Sample{Value: m.velocity, Time: m.sampleTime}
}

// Current returns a supply current modeled from speed and acceleration.
func (m *Motor) Current() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == modeNeutral {
		return neutralCurrentAmps
	}
	return neutralCurrentAmps + ampsPerRPS*math.Abs(m.velocity) + ampsPerRPSPerSec*math.Abs(m.accel)
}

// Setpoint returns the last commanded setpoint and whether it was a position setpoint.
func (m *Motor) Setpoint() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.mode == modePosition
}

// CommandCounts returns how many velocity and position setpoints were accepted.
func (m *Motor) CommandCounts() (velocity, position int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.velocityCmds, m.positionCmds
}
