// Package main runs the swerve drivetrain against a simulated robot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/swerve/config"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/robot/sim"
	"go.viam.com/swerve/spatialmath"
)

const (
	flagConfig   = "config"
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagTarget   = "target"
	flagTicks    = "ticks"
	flagRealtime = "realtime"
	flagHeavy    = "heavy"
	flagX        = "x"
	flagY        = "y"
	flagHeading  = "heading"
	flagTurn     = "turn"
	flagPlot     = "plot"
)

func main() {
	app := &cli.App{
		Name:  "swervesim",
		Usage: "drive a simulated swerve robot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write JSON logs to `FILE`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "targets",
				Usage:  "list the configured docking targets",
				Action: targetsAction,
			},
			{
				Name:  "dock",
				Usage: "dock onto a configured target",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagTarget, Required: true, Usage: "name of the docking target"},
					&cli.IntFlag{Name: flagTicks, Value: 1500, Usage: "give up after this many control ticks"},
					&cli.BoolFlag{Name: flagRealtime, Usage: "run on the wall clock instead of as fast as possible"},
					&cli.BoolFlag{Name: flagHeavy, Usage: "carry a heavy payload"},
					&cli.Float64Flag{Name: flagX, Usage: "starting x in meters"},
					&cli.Float64Flag{Name: flagY, Usage: "starting y in meters"},
					&cli.Float64Flag{Name: flagHeading, Usage: "starting heading in degrees"},
					&cli.StringFlag{Name: flagPlot, Usage: "draw the driven path to `FILE` (png, svg or pdf)"},
				},
				Action: dockAction,
			},
			{
				Name:  "calibrate",
				Usage: "turn the front left wheel by hand, calibrate, and save the offsets",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: flagTurn, Value: 0.05, Usage: "how far to turn the wheel, in turns"},
				},
				Action: calibrateAction,
			},
		},
	}

	err := app.Run(os.Args)
	_ = logging.Global().Sync()
	if err != nil {
		log.Fatal(err)
	}
}

type env struct {
	cfg     *config.Config
	logger  logging.Logger
	offsets map[string]float64
}

func setup(c *cli.Context) (*env, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}

	logCfg := cfg.Log
	if path := c.String(flagLogFile); path != "" {
		logCfg.Path = path
	}
	logCfg.Debug = logCfg.Debug || c.Bool(flagDebug)
	var logger logging.Logger
	switch {
	case logCfg.Path != "":
		logger = logging.NewFileLogger("swervesim", logCfg)
	case logCfg.Debug:
		logger = logging.NewDebugLogger("swervesim")
	default:
		logger = logging.NewLogger("swervesim")
	}
	logging.ReplaceGlobal(logger)

	e := &env{cfg: cfg, logger: logger, offsets: map[string]float64{}}
	if cfg.CalibrationFile != "" {
		offsets, err := config.NewFileCalibrationStore(cfg.CalibrationFile).Load()
		if err != nil {
			return nil, err
		}
		e.offsets = offsets
	}
	return e, nil
}

func targetsAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, e.cfg.TargetsTable())
	return nil
}

func dockAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	target, err := e.cfg.FindTarget(c.String(flagTarget))
	if err != nil {
		return err
	}
	ticks := c.Int(flagTicks)
	if ticks <= 0 {
		return errors.Errorf("--%s must be positive", flagTicks)
	}
	if c.String(flagPlot) != "" && c.Bool(flagRealtime) {
		return errors.Errorf("--%s cannot be combined with --%s", flagPlot, flagRealtime)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clk clock.Clock = clock.NewMock()
	if c.Bool(flagRealtime) {
		clk = clock.New()
	}
	start := spatialmath.NewPose2D(c.Float64(flagX), c.Float64(flagY), spatialmath.TurnFromDegrees(c.Float64(flagHeading)).Radians())
	r, err := sim.New(ctx, e.cfg, e.offsets, start, clk, e.logger.Sublogger("robot"))
	if err != nil {
		return err
	}
	r.SetEnabled(true)
	r.SetHeavyPayload(c.Bool(flagHeavy))

	ctrl, err := r.Dock(ctx, c.String(flagTarget), target)
	if err != nil {
		return err
	}

	period := e.cfg.Docking.Period
	path := []spatialmath.Pose2D{start}
	if mock, ok := clk.(*clock.Mock); ok {
		for i := 0; i < ticks && r.Scheduler().Current() != nil && ctx.Err() == nil; i++ {
			mock.Add(period)
			r.Tick(ctx)
			path = append(path, r.Pose())
		}
		r.Scheduler().Cancel(context.WithoutCancel(ctx))
	} else {
		runCtx, cancel := context.WithTimeout(ctx, time.Duration(ticks)*period)
		defer cancel()
		g, gctx := errgroup.WithContext(runCtx)
		g.Go(func() error {
			// stops the pose logger once docking ends
			defer cancel()
			return r.RunUntilIdle(gctx)
		})
		g.Go(func() error {
			ticker := clk.Ticker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					e.logger.Infow("docking", "pose", r.Pose().String())
				}
			}
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	pose := r.Pose()
	e.logger.Infow("docking ended",
		"phase", ctrl.Phase().String(),
		"pose", pose.String(),
		"distance", pose.DistanceTo(target.ScorePose),
		"elapsed", ctrl.Elapsed(),
	)
	if filename := c.String(flagPlot); filename != "" {
		return savePath(path, target.ApproachPose, target.ScorePose, filename)
	}
	return nil
}

func calibrateAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if e.cfg.CalibrationFile == "" {
		return errors.New("calibration_file must be set in the config to save offsets")
	}
	ctx := c.Context
	clk := clock.NewMock()
	r, err := sim.New(ctx, e.cfg, e.offsets, spatialmath.Pose2D{}, clk, e.logger.Sublogger("robot"))
	if err != nil {
		return err
	}

	routine := r.Calibrate(ctx, config.NewFileCalibrationStore(e.cfg.CalibrationFile))
	period := e.cfg.Docking.Period
	clk.Add(period)
	r.Tick(ctx)
	if err := r.TurnWheel(0, c.Float64(flagTurn)); err != nil {
		return err
	}
	routine.Finalize()
	clk.Add(period)
	r.Tick(ctx)

	for _, m := range r.Base().Modules() {
		e.logger.Infow("module calibrated", "module", m.Name(), "offset", m.Offset(), "heading", float64(m.Heading()))
	}
	return nil
}
