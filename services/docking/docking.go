// Package docking drives the chassis onto a scoring pose in two phases: a profiled approach
// to a pose in front of the target, then a damped final move onto the scoring pose.
package docking

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/swerve/control"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/spatialmath"
)

// Chassis is the part of the drivetrain the controller commands.
type Chassis interface {
	// Pose returns the field-referenced pose.
	Pose() spatialmath.Pose2D
	// Velocity returns the robot-relative chassis speeds.
	Velocity() spatialmath.ChassisSpeeds
	Drive(ctx context.Context, speeds spatialmath.ChassisSpeeds, fieldRelative bool)
	SetAutoAligning(aligning bool)
}

// Vision narrows or widens which fiducials feed the pose estimate.
type Vision interface {
	Isolate(tagID int)
	Globalize()
}

// A Target is where to dock. It is immutable once built.
type Target struct {
	ApproachPose spatialmath.Pose2D
	ScorePose    spatialmath.Pose2D
	TagID        int
}

// NewTarget validates and returns a Target.
func NewTarget(approach, score spatialmath.Pose2D, tagID int) (Target, error) {
	if !approach.IsFinite() || !score.IsFinite() {
		return Target{}, errors.Errorf("target poses must be finite, got approach %v and score %v", approach, score)
	}
	if tagID < 0 {
		return Target{}, errors.Errorf("invalid april tag id %d", tagID)
	}
	return Target{ApproachPose: approach, ScorePose: score, TagID: tagID}, nil
}

// Controller docks the chassis on a Target. It is driven by a scheduler through
// OnStart, OnTick, IsFinished and OnFinish, all on the control tick.
type Controller struct {
	target  Target
	chassis Chassis
	vision  Vision
	cfg     Config
	clk     clock.Clock
	logger  logging.Logger

	x, y, heading *control.ProfiledPID

	phase   Phase
	goal    spatialmath.Pose2D
	bias    float64
	scale   float64
	started time.Time
	elapsed time.Duration
	running bool
}

// NewController returns a controller for target.
func NewController(
	target Target,
	chassis Chassis,
	vision Vision,
	cfg Config,
	clk clock.Clock,
	logger logging.Logger,
) (*Controller, error) {
	if err := cfg.Validate("docking"); err != nil {
		return nil, err
	}
	if chassis == nil || vision == nil {
		return nil, errors.New("docking controller needs a chassis and a vision service")
	}

	c := &Controller{
		target:  target,
		chassis: chassis,
		vision:  vision,
		cfg:     cfg,
		clk:     clk,
		logger:  logger,
		bias:    spatialmath.TurnFromDegrees(cfg.HeadingBiasDeg).Radians(),
		scale:   1,
	}

	var err error
	for _, loop := range []**control.ProfiledPID{&c.x, &c.y} {
		if *loop, err = control.NewProfiledPID(cfg.Translation, cfg.TranslationConstraints, cfg.Period); err != nil {
			return nil, err
		}
		(*loop).SetTolerance(cfg.TranslationTolerance, math.Inf(1))
	}
	if c.heading, err = control.NewProfiledPID(cfg.Rotation, cfg.RotationConstraints, cfg.Period); err != nil {
		return nil, err
	}
	c.heading.SetTolerance(spatialmath.TurnFromDegrees(cfg.RotationToleranceDeg).Radians(), math.Inf(1))
	c.heading.EnableContinuousInput(-math.Pi, math.Pi)

	c.setGoal(target.ApproachPose)
	return c, nil
}

// setGoal retargets the three loops. Their setpoints are kept so the output stays continuous.
func (c *Controller) setGoal(pose spatialmath.Pose2D) {
	c.goal = pose.RotateBy(c.bias)
	c.x.SetGoal(c.goal.X())
	c.y.SetGoal(c.goal.Y())
	c.heading.SetGoal(c.goal.Theta)
}

// OnStart seeds the loops from the measured pose and velocity and claims the chassis.
func (c *Controller) OnStart(ctx context.Context) {
	pose := c.chassis.Pose()
	velocity := c.chassis.Velocity().RobotToField(pose.Theta)

	c.logger.Infow("docking", "score", c.target.ScorePose.String(), "from", pose.String(), "tag", c.target.TagID)

	c.x.Reset(pose.X(), velocity.Vx)
	c.y.Reset(pose.Y(), velocity.Vy)
	c.heading.Reset(pose.Theta, velocity.Omega)

	c.phase = Approaching
	c.scale = 1
	c.setGoal(c.target.ApproachPose)

	c.chassis.SetAutoAligning(true)
	c.vision.Isolate(c.target.TagID)

	c.started = c.clk.Now()
	c.elapsed = 0
	c.running = true
}

// OnTick advances the phase and drives toward the current goal.
func (c *Controller) OnTick(ctx context.Context) {
	pose := c.chassis.Pose()
	distance := pose.DistanceTo(c.goal)

	if next := Transition(c.phase, distance, c.cfg.BlendDistance); next != c.phase {
		c.phase = next
		c.setGoal(c.target.ScorePose)
		c.logger.Infow("approached scoring location, scoring", "distance", distance, "elapsed", c.Elapsed())
	}

	c.chassis.Drive(ctx, c.output(pose, distance), true)
}

// output steps the loops and returns the field-relative command.
func (c *Controller) output(pose spatialmath.Pose2D, distance float64) spatialmath.ChassisSpeeds {
	c.scale = 1
	if c.phase == Scoring {
		c.scale = ScoringScale(distance, c.cfg.ScoringScale)
	}
	return spatialmath.ChassisSpeeds{
		Vx:    c.x.Next(pose.X()) * c.scale,
		Vy:    c.y.Next(pose.Y()) * c.scale,
		Omega: c.heading.Next(pose.Theta),
	}
}

// IsFinished reports whether the chassis is on the scoring pose. It is never true while approaching.
func (c *Controller) IsFinished() bool {
	return c.phase == Scoring && c.x.AtGoal() && c.y.AtGoal() && c.heading.AtGoal()
}

// OnFinish stops the chassis and releases it and the vision service. It runs on every exit.
func (c *Controller) OnFinish(ctx context.Context, interrupted bool) {
	c.chassis.Drive(ctx, spatialmath.ChassisSpeeds{}, false)
	c.chassis.SetAutoAligning(false)
	c.vision.Globalize()

	c.elapsed = c.clk.Since(c.started)
	c.running = false
	c.logger.Infow("docking ended", "interrupted", interrupted, "phase", c.phase.String(), "elapsed", c.elapsed)
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Goal returns the current goal pose, including the heading bias.
func (c *Controller) Goal() spatialmath.Pose2D {
	return c.goal
}

// Scale returns the translational scale applied on the last tick.
func (c *Controller) Scale() float64 {
	return c.scale
}

// Elapsed returns how long the maneuver has been running, or ran for once finished.
func (c *Controller) Elapsed() time.Duration {
	if c.running {
		return c.clk.Since(c.started)
	}
	return c.elapsed
}
