package sim

import (
	"sync"

	"go.viam.com/swerve/logging"
)

// Vision records which fiducials the robot is told to track.
type Vision struct {
	mu       sync.Mutex
	logger   logging.Logger
	isolated int
	global   bool
}

// Isolate narrows tracking to tagID.
func (v *Vision) Isolate(tagID int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.isolated = tagID
	v.global = false
	v.logger.Debugw("isolating april tag", "tag", tagID)
}

// Globalize tracks every tag again.
func (v *Vision) Globalize() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.global = true
	v.logger.Debug("tracking all april tags")
}

// Tracking returns the isolated tag and whether every tag is tracked instead.
func (v *Vision) Tracking() (tagID int, global bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isolated, v.global
}
