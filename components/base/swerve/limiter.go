package swerve

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// NumModules is the number of wheels on a swerve chassis.
const NumModules = 4

// A Limiter rate limits wheel speeds so the mean absolute wheel acceleration stays under a
// ceiling. When it has to limit, every wheel's acceleration is scaled by the same factor,
// which keeps the ratios between wheel speeds and so the shape of the commanded motion.
type Limiter struct {
	cfg      LimiterConfig
	clk      clock.Clock
	previous [NumModules]ModuleState
	lastTime time.Time
}

// NewLimiter returns a limiter seeded with the states the modules are in now.
func NewLimiter(initial [NumModules]ModuleState, cfg LimiterConfig, clk clock.Clock) (*Limiter, error) {
	if err := cfg.Validate("limiter"); err != nil {
		return nil, err
	}
	return &Limiter{cfg: cfg, clk: clk, previous: initial, lastTime: clk.Now()}, nil
}

// Ceiling returns the acceleration ceiling in m/s². The slow ceiling applies only while
// carrying a heavy payload and not auto aligning.
func (l *Limiter) Ceiling(heavyPayload, autoAligning bool) float64 {
	if heavyPayload && !autoAligning {
		return l.cfg.SlowAccelerationLimit
	}
	return l.cfg.AccelerationLimit
}

// Previous returns the last limited states.
func (l *Limiter) Previous() [NumModules]ModuleState {
	return l.previous
}

// Reset reseeds the limiter with states the wheels are in now.
func (l *Limiter) Reset(states [NumModules]ModuleState) {
	l.previous = states
	l.lastTime = l.clk.Now()
}

// Limit returns requested with its speeds rate limited. Angles pass through. A request
// to stop every wheel is applied immediately.
func (l *Limiter) Limit(requested [NumModules]ModuleState, heavyPayload, autoAligning bool) [NumModules]ModuleState {
	now := l.clk.Now()

	if lo.EveryBy(requested[:], func(s ModuleState) bool { return s.Speed == 0 }) {
		l.previous = requested
		l.lastTime = now
		return requested
	}

	dt := now.Sub(l.lastTime).Seconds()
	limited := requested
	if dt <= 0 {
		for i := range limited {
			limited[i].Speed = l.previous[i].Speed
		}
		return limited
	}

	var acc [NumModules]float64
	for i := range requested {
		acc[i] = (requested[i].Speed - l.previous[i].Speed) / dt
	}

	// the L1 norm over the wheel count is the mean absolute acceleration
	mean := floats.Norm(acc[:], 1) / NumModules
	if ceiling := l.Ceiling(heavyPayload, autoAligning); mean > ceiling {
		floats.Scale(ceiling/mean, acc[:])
		for i := range limited {
			limited[i].Speed = l.previous[i].Speed + acc[i]*dt
		}
	}

	l.previous = limited
	l.lastTime = now
	return limited
}
