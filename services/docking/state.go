package docking

import (
	"github.com/samber/lo"
)

// Phase is the stage of a docking maneuver.
type Phase int

const (
	// Approaching drives to the approach pose in front of the target.
	Approaching Phase = iota
	// Scoring drives from the approach pose onto the scoring pose.
	Scoring
)

func (p Phase) String() string {
	switch p {
	case Approaching:
		return "approaching"
	case Scoring:
		return "scoring"
	default:
		return "unknown"
	}
}

// Transition returns the phase after observing distance meters to the current goal.
// Scoring is terminal.
func Transition(phase Phase, distance, blendDistance float64) Phase {
	if phase == Approaching && distance < blendDistance {
		return Scoring
	}
	return phase
}

// ScoringScale returns the factor applied to translational output while scoring.
// It grows with distance and is clamped to the configured range.
func ScoringScale(distance float64, cfg ScaleConfig) float64 {
	return lo.Clamp(cfg.Gain*distance, cfg.Min, cfg.Max)
}
