package swerve

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/swerve/utils"
)

// Defaults for a competition chassis.
const (
	DefaultAccelerationLimit     = 12.0
	DefaultSlowAccelerationLimit = 4.0
	DefaultMaxModuleSpeed        = 4.5
	DefaultMaxVelocity           = 4.0
	DefaultSlowVelocity          = 1.0
	DefaultMaxAngularVelocity    = 2 * math.Pi
)

// ModuleConfig describes where a module is mounted, in meters from the robot center
// with +x forward and +y left.
type ModuleConfig struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Translation returns the mounting position.
func (cfg ModuleConfig) Translation() r2.Point {
	return r2.Point{X: cfg.X, Y: cfg.Y}
}

// Validate ensures all parts of the config are valid.
func (cfg ModuleConfig) Validate(path string) error {
	if cfg.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if math.IsNaN(cfg.X) || math.IsNaN(cfg.Y) || math.IsInf(cfg.X, 0) || math.IsInf(cfg.Y, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("module %s has a non-finite translation", cfg.Name))
	}
	return nil
}

// LimiterConfig holds the acceleration ceilings in m/s².
type LimiterConfig struct {
	AccelerationLimit     float64 `json:"acceleration_limit"`
	SlowAccelerationLimit float64 `json:"slow_acceleration_limit"`
}

// Validate ensures all parts of the config are valid.
func (cfg LimiterConfig) Validate(path string) error {
	if !(cfg.AccelerationLimit > 0) || math.IsInf(cfg.AccelerationLimit, 0) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("acceleration_limit must be positive, got %v", cfg.AccelerationLimit))
	}
	if !(cfg.SlowAccelerationLimit > 0) || cfg.SlowAccelerationLimit > cfg.AccelerationLimit {
		return utils.NewConfigValidationError(path,
			errors.Errorf("slow_acceleration_limit must be in (0, %v], got %v", cfg.AccelerationLimit, cfg.SlowAccelerationLimit))
	}
	return nil
}

// TeleopConfig scales joystick input into chassis speeds.
type TeleopConfig struct {
	MaxVelocity        float64 `json:"max_velocity"`
	SlowVelocity       float64 `json:"slow_velocity"`
	MaxAngularVelocity float64 `json:"max_angular_velocity"`
	Deadband           float64 `json:"deadband"`
}

// Validate ensures all parts of the config are valid.
func (cfg TeleopConfig) Validate(path string) error {
	if !(cfg.MaxVelocity > 0) || !(cfg.MaxAngularVelocity > 0) {
		return utils.NewConfigValidationError(path, errors.New("max_velocity and max_angular_velocity must be positive"))
	}
	if !(cfg.SlowVelocity > 0) || cfg.SlowVelocity > cfg.MaxVelocity {
		return utils.NewConfigValidationError(path,
			errors.Errorf("slow_velocity must be in (0, %v], got %v", cfg.MaxVelocity, cfg.SlowVelocity))
	}
	if cfg.Deadband < 0 || cfg.Deadband >= 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("deadband must be in [0, 1), got %v", cfg.Deadband))
	}
	return nil
}

// Config describes a swerve chassis. Modules are ordered front left, front right,
// back left, back right.
type Config struct {
	Modules []ModuleConfig `json:"modules"`
	// DrivePositionCoefficient is the distance in meters travelled per drive rotor rotation.
	DrivePositionCoefficient float64       `json:"drive_position_coefficient"`
	MaxModuleSpeed           float64       `json:"max_module_speed"`
	Limiter                  LimiterConfig `json:"limiter"`
	Teleop                   TeleopConfig  `json:"teleop"`
}

// DefaultConfig returns a square 0.6m chassis.
func DefaultConfig() Config {
	const half = 0.3
	return Config{
		Modules: []ModuleConfig{
			{Name: "front_left", X: half, Y: half},
			{Name: "front_right", X: half, Y: -half},
			{Name: "back_left", X: -half, Y: half},
			{Name: "back_right", X: -half, Y: -half},
		},
		DrivePositionCoefficient: 0.0319,
		MaxModuleSpeed:           DefaultMaxModuleSpeed,
		Limiter: LimiterConfig{
			AccelerationLimit:     DefaultAccelerationLimit,
			SlowAccelerationLimit: DefaultSlowAccelerationLimit,
		},
		Teleop: TeleopConfig{
			MaxVelocity:        DefaultMaxVelocity,
			SlowVelocity:       DefaultSlowVelocity,
			MaxAngularVelocity: DefaultMaxAngularVelocity,
			Deadband:           0.05,
		},
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Modules) != NumModules {
		return utils.NewConfigValidationError(path,
			errors.Errorf("expected %d modules, got %d", NumModules, len(cfg.Modules)))
	}
	names := map[string]bool{}
	for i, m := range cfg.Modules {
		if err := m.Validate(utils.JoinPath(path, "modules")); err != nil {
			return err
		}
		if names[m.Name] {
			return utils.NewConfigValidationError(path, errors.Errorf("module %d reuses the name %q", i, m.Name))
		}
		names[m.Name] = true
	}
	if !(cfg.DrivePositionCoefficient > 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "drive_position_coefficient")
	}
	if !(cfg.MaxModuleSpeed > 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "max_module_speed")
	}
	if err := cfg.Limiter.Validate(utils.JoinPath(path, "limiter")); err != nil {
		return err
	}
	return cfg.Teleop.Validate(utils.JoinPath(path, "teleop"))
}

