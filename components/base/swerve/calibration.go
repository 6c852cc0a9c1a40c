package swerve

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/swerve/logging"
)

// A CalibrationStore persists module offsets by module name.
type CalibrationStore interface {
	SaveOffsets(offsets map[string]float64) error
}

// CalibrationRoutine hand-calibrates every module. It runs only while the robot is
// disabled: the wheels coast so they can be aligned by hand, and the routine waits,
// tick after tick, for an operator to confirm with Finalize. Enabling the robot or
// interrupting the routine restores the previous offsets.
type CalibrationRoutine struct {
	base    *Base
	enabled func() bool
	store   CalibrationStore
	logger  logging.Logger

	finalize atomic.Bool
}

// NewCalibrationRoutine returns a routine for base. enabled reports whether the robot is enabled.
func NewCalibrationRoutine(
	base *Base,
	enabled func() bool,
	store CalibrationStore,
	logger logging.Logger,
) *CalibrationRoutine {
	return &CalibrationRoutine{base: base, enabled: enabled, store: store, logger: logger}
}

// Finalize asks the routine to accept the current wheel alignment. It is safe to call
// from any goroutine.
func (c *CalibrationRoutine) Finalize() {
	c.finalize.Store(true)
}

// OnStart releases every steering motor. An enabled robot is left untouched and the
// routine finishes on its first check.
func (c *CalibrationRoutine) OnStart(ctx context.Context) {
	c.finalize.Store(false)
	if c.enabled() {
		c.logger.Warn("robot is enabled, not calibrating")
		return
	}
	var err error
	for _, m := range c.base.Modules() {
		err = multierr.Combine(err, m.BeginCalibration(ctx))
	}
	if err != nil {
		c.logger.Warnw("failed to begin calibration", "error", err)
	}
	c.logger.Info("calibrating modules, align the wheels forward and finalize")
}

// OnTick does nothing; the routine only waits.
func (c *CalibrationRoutine) OnTick(ctx context.Context) {}

// IsFinished reports whether the operator finalized or the robot was enabled.
func (c *CalibrationRoutine) IsFinished() bool {
	return c.finalize.Load() || c.enabled()
}

// OnFinish finalizes and persists the offsets if the operator asked for it, and cancels otherwise.
func (c *CalibrationRoutine) OnFinish(ctx context.Context, interrupted bool) {
	if interrupted || c.enabled() || !c.finalize.Load() {
		var err error
		for _, m := range c.base.Modules() {
			err = multierr.Combine(err, m.CancelCalibration(ctx))
		}
		if err != nil {
			c.logger.Warnw("failed to cancel calibration", "error", err)
		}
		c.logger.Info("calibration cancelled")
		return
	}

	var err error
	offsets := map[string]float64{}
	for _, m := range c.base.Modules() {
		offset, ferr := m.FinalizeCalibration(ctx)
		err = multierr.Combine(err, ferr)
		offsets[m.Name()] = offset
	}
	if err != nil {
		c.logger.Warnw("failed to finalize calibration, affected modules kept their offsets", "error", err)
	}
	if c.store == nil {
		return
	}
	if err := c.store.SaveOffsets(offsets); err != nil {
		c.logger.Errorw("failed to save calibration", "error", err)
		return
	}
	c.logger.Infow("calibration saved", "offsets", offsets)
}
