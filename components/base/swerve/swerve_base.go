package swerve

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/spatialmath"
)

// A PoseSource reports the field-referenced chassis pose.
type PoseSource interface {
	Pose() spatialmath.Pose2D
}

// A PayloadSource reports whether the robot is carrying something heavy enough to
// warrant gentler acceleration.
type PayloadSource interface {
	HeavyPayload() bool
}

// ModuleStatus is a telemetry snapshot of one module.
type ModuleStatus struct {
	Name         string         `json:"name"`
	Target       ModuleState    `json:"target"`
	Measured     ModuleState    `json:"measured"`
	Position     ModulePosition `json:"position"`
	DriveCurrent float64        `json:"drive_current"`
	SteerCurrent float64        `json:"steer_current"`
	Offset       float64        `json:"offset"`
	Calibrating  bool           `json:"calibrating"`
}

// Status is a telemetry snapshot of the chassis.
type Status struct {
	Pose         spatialmath.Pose2D        `json:"pose"`
	Velocity     spatialmath.ChassisSpeeds `json:"velocity"`
	AutoAligning bool                      `json:"auto_aligning"`
	Modules      []ModuleStatus            `json:"modules"`
}

// Base is the chassis facade. Each Drive call runs the whole per-tick pipeline:
// frame conversion, inverse kinematics, desaturation, acceleration limiting and module
// actuation, in that order.
type Base struct {
	cfg        Config
	modules    [NumModules]*Module
	kinematics *Kinematics
	limiter    *Limiter
	poses      PoseSource
	payload    PayloadSource
	clk        clock.Clock
	logger     logging.Logger

	// actuator warnings are limited to one per second of control time
	warnings   *rate.Limiter
	suppressed int

	autoAligning atomic.Bool
}

// NewBase builds the modules from hw, in the order of cfg.Modules, applying the stored
// calibration offset for each module name.
func NewBase(
	ctx context.Context,
	cfg Config,
	hw [NumModules]ModuleHardware,
	offsets map[string]float64,
	poses PoseSource,
	payload PayloadSource,
	clk clock.Clock,
	logger logging.Logger,
) (*Base, error) {
	if err := cfg.Validate("chassis"); err != nil {
		return nil, err
	}
	if poses == nil || payload == nil {
		return nil, errors.New("swerve base needs a pose source and a payload source")
	}

	b := &Base{
		cfg:      cfg,
		poses:    poses,
		payload:  payload,
		clk:      clk,
		logger:   logger,
		warnings: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	var translations [NumModules]r2.Point
	var initial [NumModules]ModuleState
	for i, mc := range cfg.Modules {
		m, err := NewModule(ctx, mc, hw[i], offsets[mc.Name], cfg.DrivePositionCoefficient, clk, logger.Sublogger(mc.Name))
		if err != nil {
			return nil, err
		}
		b.modules[i] = m
		translations[i] = m.Translation()
		initial[i] = m.State()
	}

	var err error
	if b.kinematics, err = NewKinematics(translations); err != nil {
		return nil, err
	}
	if b.limiter, err = NewLimiter(initial, cfg.Limiter, clk); err != nil {
		return nil, err
	}
	return b, nil
}

// Drive moves the chassis at speeds, which are in the field frame when fieldRelative is set.
// Actuator failures are logged and do not stop the remaining modules.
func (b *Base) Drive(ctx context.Context, speeds spatialmath.ChassisSpeeds, fieldRelative bool) {
	if lo.SomeBy(b.modules[:], (*Module).Calibrating) {
		// wheels are coasting by hand; track them so driving resumes from where they are
		b.limiter.Reset(b.ModuleStates())
		return
	}
	if fieldRelative {
		speeds = speeds.FieldToRobot(b.poses.Pose().Theta)
	}
	states := Desaturate(b.kinematics.ToModuleStates(speeds), b.cfg.MaxModuleSpeed)
	states = b.limiter.Limit(states, b.payload.HeavyPayload(), b.IsAutoAligning())

	var err error
	for i, m := range b.modules {
		err = multierr.Combine(err, m.Actuate(ctx, states[i]))
	}
	if err == nil {
		return
	}
	if !b.warnings.AllowN(b.clk.Now(), 1) {
		b.suppressed++
		return
	}
	b.logger.Warnw("failed to actuate modules", "error", err, "suppressed", b.suppressed)
	b.suppressed = 0
}

// Stop commands every wheel to stop immediately, keeping the current angles.
func (b *Base) Stop(ctx context.Context) {
	b.Drive(ctx, spatialmath.ChassisSpeeds{}, false)
}

// SetAutoAligning marks whether an automatic alignment maneuver owns the chassis.
func (b *Base) SetAutoAligning(aligning bool) {
	if b.autoAligning.Swap(aligning) != aligning {
		b.logger.Debugw("auto aligning changed", "aligning", aligning)
	}
}

// IsAutoAligning reports whether an automatic alignment maneuver owns the chassis.
func (b *Base) IsAutoAligning() bool {
	return b.autoAligning.Load()
}

// Pose returns the field-referenced pose.
func (b *Base) Pose() spatialmath.Pose2D {
	return b.poses.Pose()
}

// Velocity returns the measured robot-relative chassis speeds.
func (b *Base) Velocity() spatialmath.ChassisSpeeds {
	return b.kinematics.ToChassisSpeeds(b.ModuleStates())
}

// ModuleStates returns the measured state of every module.
func (b *Base) ModuleStates() [NumModules]ModuleState {
	var states [NumModules]ModuleState
	for i, m := range b.modules {
		states[i] = m.State()
	}
	return states
}

// ModulePositions returns the measured position of every module.
func (b *Base) ModulePositions() [NumModules]ModulePosition {
	var positions [NumModules]ModulePosition
	for i, m := range b.modules {
		positions[i] = m.Position()
	}
	return positions
}

// Modules returns the modules in configuration order.
func (b *Base) Modules() [NumModules]*Module {
	return b.modules
}

// Config returns the chassis configuration.
func (b *Base) Config() Config {
	return b.cfg
}

// HeavyPayload reports the payload flag the limiter currently sees.
func (b *Base) HeavyPayload() bool {
	return b.payload.HeavyPayload()
}

// Status returns a telemetry snapshot.
func (b *Base) Status() Status {
	return Status{
		Pose:         b.Pose(),
		Velocity:     b.Velocity(),
		AutoAligning: b.IsAutoAligning(),
		Modules: lo.Map(b.modules[:], func(m *Module, _ int) ModuleStatus {
			return ModuleStatus{
				Name:         m.Name(),
				Target:       m.TargetState(),
				Measured:     m.State(),
				Position:     m.Position(),
				DriveCurrent: m.DriveCurrent(),
				SteerCurrent: m.SteerCurrent(),
				Offset:       m.Offset(),
				Calibrating:  m.Calibrating(),
			}
		}),
	}
}
