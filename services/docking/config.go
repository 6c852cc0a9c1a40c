package docking

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/swerve/control"
	"go.viam.com/swerve/spatialmath"
	"go.viam.com/swerve/utils"
)

// ScaleConfig shapes the translational damping applied while scoring.
type ScaleConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Gain float64 `json:"gain"`
}

// Config tunes the docking controller.
type Config struct {
	Translation            control.PIDConfig   `json:"translation_pid"`
	TranslationConstraints control.Constraints `json:"translation_constraints"`
	// TranslationTolerance is in meters.
	TranslationTolerance float64 `json:"translation_tolerance"`

	Rotation            control.PIDConfig   `json:"rotation_pid"`
	RotationConstraints control.Constraints `json:"rotation_constraints"`
	// RotationToleranceDeg is in degrees.
	RotationToleranceDeg float64 `json:"rotation_tolerance_deg"`

	// BlendDistance is how close to the approach pose, in meters, the controller switches to scoring.
	BlendDistance float64 `json:"blend_distance"`
	// HeadingBiasDeg is added to every goal heading to make up for a mechanical misalignment.
	HeadingBiasDeg float64       `json:"heading_bias_deg"`
	ScoringScale   ScaleConfig   `json:"scoring_scale"`
	Period         time.Duration `json:"period"`
}

// DefaultConfig returns the tuning used on the competition robot.
func DefaultConfig() Config {
	return Config{
		Translation:            control.PIDConfig{P: 5},
		TranslationConstraints: control.Constraints{MaxVelocity: 4, MaxAcceleration: 3},
		TranslationTolerance:   0.0125,
		Rotation:               control.PIDConfig{P: 5},
		RotationConstraints:    control.Constraints{MaxVelocity: 2 * math.Pi, MaxAcceleration: 4 * math.Pi},
		RotationToleranceDeg:   1,
		BlendDistance:          0.3,
		HeadingBiasDeg:         4.5,
		ScoringScale:           ScaleConfig{Min: 0.75, Max: 1, Gain: 1},
		Period:                 20 * time.Millisecond,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	for _, section := range []struct {
		field string
		err   error
	}{
		{"translation_pid", cfg.Translation.Validate()},
		{"translation_constraints", cfg.TranslationConstraints.Validate()},
		{"rotation_pid", cfg.Rotation.Validate()},
		{"rotation_constraints", cfg.RotationConstraints.Validate()},
	} {
		if section.err != nil {
			return utils.NewConfigValidationError(utils.JoinPath(path, section.field), section.err)
		}
	}
	if !(cfg.TranslationTolerance > 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "translation_tolerance")
	}
	if !(cfg.RotationToleranceDeg > 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "rotation_tolerance_deg")
	}
	if !(cfg.BlendDistance > 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "blend_distance")
	}
	if math.IsNaN(cfg.HeadingBiasDeg) || math.Abs(cfg.HeadingBiasDeg) >= 180 {
		return utils.NewConfigValidationError(path, errors.Errorf("heading_bias_deg must be within (-180, 180), got %v", cfg.HeadingBiasDeg))
	}
	s := cfg.ScoringScale
	if !(s.Min > 0) || s.Min > s.Max || s.Max > 1 || s.Gain < 0 {
		return utils.NewConfigValidationError(utils.JoinPath(path, "scoring_scale"),
			errors.Errorf("expected 0 < min <= max <= 1 and gain >= 0, got %+v", s))
	}
	if cfg.Period <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "period")
	}
	return nil
}

// TargetConfig describes a docking target in field coordinates. Headings are in degrees.
type TargetConfig struct {
	Name       string     `json:"name"`
	Approach   [3]float64 `json:"approach"`
	Score      [3]float64 `json:"score"`
	AprilTagID int        `json:"april_tag_id"`
}

// Target converts the config into a validated Target.
func (cfg TargetConfig) Target() (Target, error) {
	pose := func(p [3]float64) spatialmath.Pose2D {
		return spatialmath.NewPose2D(p[0], p[1], spatialmath.TurnFromDegrees(p[2]).Radians())
	}
	t, err := NewTarget(pose(cfg.Approach), pose(cfg.Score), cfg.AprilTagID)
	if err != nil {
		return Target{}, errors.Wrapf(err, "docking target %q", cfg.Name)
	}
	return t, nil
}
