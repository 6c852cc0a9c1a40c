// Package operation runs maneuvers on a fixed control tick.
package operation

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/swerve/logging"
)

// A Maneuver owns the drivetrain while it is scheduled. Every hook runs on the control
// tick and must not block.
type Maneuver interface {
	OnStart(ctx context.Context)
	OnTick(ctx context.Context)
	IsFinished() bool
	// OnFinish runs exactly once per OnStart, whether the maneuver finished on its own
	// or was interrupted.
	OnFinish(ctx context.Context, interrupted bool)
}

// Operation is a scheduled maneuver.
type Operation struct {
	ID       uuid.UUID
	Name     string
	Started  time.Time
	Maneuver Maneuver
}

// Scheduler runs at most one maneuver at a time. It is not safe for concurrent use;
// all calls must come from the control tick, which is what Run provides.
type Scheduler struct {
	clk     clock.Clock
	logger  logging.Logger
	current *Operation
	ticks   atomic.Uint64
	running atomic.Bool
}

// NewScheduler returns an idle scheduler.
func NewScheduler(clk clock.Clock, logger logging.Logger) *Scheduler {
	return &Scheduler{clk: clk, logger: logger}
}

// Schedule interrupts the current maneuver, if any, and starts m.
func (s *Scheduler) Schedule(ctx context.Context, name string, m Maneuver) *Operation {
	s.Cancel(ctx)
	op := &Operation{ID: uuid.New(), Name: name, Started: s.clk.Now(), Maneuver: m}
	s.current = op
	s.logger.Debugw("starting maneuver", "name", name, "id", op.ID.String())
	m.OnStart(ctx)
	return op
}

// Cancel interrupts the current maneuver and reports whether there was one.
func (s *Scheduler) Cancel(ctx context.Context) bool {
	if s.current == nil {
		return false
	}
	s.finish(ctx, true)
	return true
}

// Current returns the running operation or nil.
func (s *Scheduler) Current() *Operation {
	return s.current
}

// Ticks returns how many ticks have run. It is safe to call from any goroutine.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Tick runs one control cycle of the current maneuver and finishes it once it is done.
func (s *Scheduler) Tick(ctx context.Context) {
	s.ticks.Inc()
	if s.current == nil {
		return
	}
	s.current.Maneuver.OnTick(ctx)
	if s.current.Maneuver.IsFinished() {
		s.finish(ctx, false)
	}
}

func (s *Scheduler) finish(ctx context.Context, interrupted bool) {
	op := s.current
	s.current = nil
	op.Maneuver.OnFinish(ctx, interrupted)
	s.logger.Debugw("maneuver ended",
		"name", op.Name, "id", op.ID.String(), "interrupted", interrupted, "duration", s.clk.Since(op.Started))
}

// Running reports whether Run is looping. It is safe to call from any goroutine.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run ticks every period until ctx is done. periodic runs before each tick and is where
// inputs are refreshed. The running maneuver is interrupted before Run returns.
func (s *Scheduler) Run(ctx context.Context, period time.Duration, periodic func(ctx context.Context)) error {
	if period <= 0 {
		return errors.Errorf("scheduler period must be positive, got %v", period)
	}
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("scheduler is already running")
	}
	defer s.running.Store(false)

	ticker := s.clk.Ticker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// cleanup still needs a live context
			s.Cancel(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
		}
		start := s.clk.Now()
		if periodic != nil {
			periodic(ctx)
		}
		s.Tick(ctx)
		if took := s.clk.Since(start); took > period {
			s.logger.Warnw("control tick overran its period", "took", took, "period", period)
		}
	}
}
