// Package sim wires the drivetrain to simulated hardware and closes the loop through a
// simulated world, so maneuvers can be run end to end off the robot.
package sim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	fakeencoder "go.viam.com/swerve/components/encoder/fake"
	fakemotor "go.viam.com/swerve/components/motor/fake"
	"go.viam.com/swerve/components/base/swerve"
	"go.viam.com/swerve/config"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/operation"
	"go.viam.com/swerve/services/docking"
	"go.viam.com/swerve/spatialmath"
)

// Robot is a simulated swerve robot.
type Robot struct {
	cfg    *config.Config
	clk    clock.Clock
	logger logging.Logger

	drives  [swerve.NumModules]*fakemotor.Motor
	steers  [swerve.NumModules]*fakemotor.Motor
	sensors [swerve.NumModules]*fakeencoder.Encoder

	world     *world
	vision    *Vision
	base      *swerve.Base
	scheduler *operation.Scheduler

	heavy   atomic.Bool
	enabled atomic.Bool
	last    time.Time
}

// New builds a simulated robot at start whose steering sensors carry offsets. Every steering
// rotor starts at its raw zero, so a module reads its own offset until it is recalibrated.
func New(
	ctx context.Context,
	cfg *config.Config,
	offsets map[string]float64,
	start spatialmath.Pose2D,
	clk clock.Clock,
	logger logging.Logger,
) (*Robot, error) {
	r := &Robot{
		cfg:    cfg,
		clk:    clk,
		logger: logger,
		world:  &world{pose: start},
		vision: &Vision{logger: logger.Sublogger("vision")},
		last:   clk.Now(),
	}

	if err := cfg.Chassis.Validate("chassis"); err != nil {
		return nil, err
	}
	var hw [swerve.NumModules]swerve.ModuleHardware
	for i, mc := range cfg.Chassis.Modules {
		r.drives[i] = fakemotor.NewMotor(mc.Name+"_drive", clk, logger)
		r.steers[i] = fakemotor.NewMotor(mc.Name+"_steer", clk, logger)
		r.sensors[i] = fakeencoder.NewEncoder(mc.Name+"_encoder", r.steers[i], offsets[mc.Name])
		hw[i] = swerve.ModuleHardware{Drive: r.drives[i], Steer: r.steers[i], Sensor: r.sensors[i]}
	}

	base, err := swerve.NewBase(ctx, cfg.Chassis, hw, offsets, r.world, r, clk, logger.Sublogger("chassis"))
	if err != nil {
		return nil, err
	}
	r.base = base
	r.scheduler = operation.NewScheduler(clk, logger.Sublogger("scheduler"))
	return r, nil
}

// HeavyPayload reports whether the simulated robot is carrying a heavy payload.
func (r *Robot) HeavyPayload() bool {
	return r.heavy.Load()
}

// SetHeavyPayload sets the payload flag.
func (r *Robot) SetHeavyPayload(heavy bool) {
	r.heavy.Store(heavy)
}

// Enabled reports whether the robot is enabled.
func (r *Robot) Enabled() bool {
	return r.enabled.Load()
}

// SetEnabled enables or disables the robot.
func (r *Robot) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Base returns the chassis.
func (r *Robot) Base() *swerve.Base {
	return r.base
}

// Vision returns the simulated vision service.
func (r *Robot) Vision() *Vision {
	return r.vision
}

// Scheduler returns the maneuver scheduler.
func (r *Robot) Scheduler() *operation.Scheduler {
	return r.scheduler
}

// Pose returns the true pose.
func (r *Robot) Pose() spatialmath.Pose2D {
	return r.world.Pose()
}

// ResetPose teleports the robot.
func (r *Robot) ResetPose(pose spatialmath.Pose2D) {
	r.world.reset(pose)
}

// Dock schedules a docking maneuver onto target.
func (r *Robot) Dock(ctx context.Context, name string, target docking.Target) (*docking.Controller, error) {
	ctrl, err := docking.NewController(target, r.base, r.vision, r.cfg.Docking, r.clk, r.logger.Sublogger("docking"))
	if err != nil {
		return nil, err
	}
	r.scheduler.Schedule(ctx, "dock "+name, ctrl)
	return ctrl, nil
}

// Calibrate schedules the module calibration routine. Offsets are saved to store.
func (r *Robot) Calibrate(ctx context.Context, store swerve.CalibrationStore) *swerve.CalibrationRoutine {
	routine := swerve.NewCalibrationRoutine(r.base, r.Enabled, store, r.logger.Sublogger("calibration"))
	r.scheduler.Schedule(ctx, "calibrate", routine)
	return routine
}

// Teleop schedules joystick driving.
func (r *Robot) Teleop(ctx context.Context, joystick swerve.Joystick) {
	r.scheduler.Schedule(ctx, "teleop", swerve.NewTeleopDrive(r.base, joystick))
}

// TurnWheel turns the steering of module i by hand.
func (r *Robot) TurnWheel(i int, turns float64) error {
	if i < 0 || i >= len(r.steers) {
		return errors.Errorf("no module %d", i)
	}
	r.steers[i].Turn(turns)
	return nil
}

// Step advances the simulated hardware and world to now.
func (r *Robot) Step() {
	now := r.clk.Now()
	dt := now.Sub(r.last)
	r.last = now
	if dt <= 0 {
		return
	}
	for i := range r.drives {
		r.drives[i].Step(dt)
		r.steers[i].Step(dt)
	}
	r.world.integrate(r.base.Velocity(), dt)
}

// Tick runs one control cycle: the simulation catches up to now, then the scheduled
// maneuver runs.
func (r *Robot) Tick(ctx context.Context) {
	r.Step()
	r.scheduler.Tick(ctx)
}

// Run ticks on the configured period until ctx is done.
func (r *Robot) Run(ctx context.Context) error {
	return r.scheduler.Run(ctx, r.cfg.Docking.Period, func(context.Context) { r.Step() })
}

// RunUntilIdle ticks like Run and returns nil once no maneuver is scheduled.
func (r *Robot) RunUntilIdle(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	err := r.scheduler.Run(runCtx, r.cfg.Docking.Period, func(context.Context) {
		r.Step()
		if r.scheduler.Current() == nil {
			cancel()
		}
	})
	if ctx.Err() == nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
