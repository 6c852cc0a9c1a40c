package sim

import (
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r2"

	"go.viam.com/swerve/spatialmath"
)

// world integrates the true chassis pose from measured robot-relative speeds.
type world struct {
	mu   sync.Mutex
	pose spatialmath.Pose2D
}

func (w *world) Pose() spatialmath.Pose2D {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pose
}

func (w *world) reset(pose spatialmath.Pose2D) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pose = pose
}

// integrate moves the pose along the arc the speeds trace over dt.
func (w *world) integrate(speeds spatialmath.ChassisSpeeds, dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	secs := dt.Seconds()
	dx, dy, dTheta := speeds.Vx*secs, speeds.Vy*secs, speeds.Omega*secs

	s, c := 1-dTheta*dTheta/6, dTheta/2
	if math.Abs(dTheta) > 1e-9 {
		s = math.Sin(dTheta) / dTheta
		c = (1 - math.Cos(dTheta)) / dTheta
	}
	local := r2.Point{X: dx*s - dy*c, Y: dx*c + dy*s}
	w.pose = spatialmath.Pose2D{
		Point: w.pose.Point.Add(spatialmath.RotatePoint(local, w.pose.Theta)),
		Theta: spatialmath.AngleModulus(w.pose.Theta + dTheta),
	}
}
