package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/swerve/spatialmath"
)

func TestSavePath(t *testing.T) {
	approach := spatialmath.NewPose2D(2, 0, 0)
	score := spatialmath.NewPose2D(2.2, 0.3, 1.5)

	err := savePath(nil, approach, score, filepath.Join(t.TempDir(), "empty.png"))
	test.That(t, err, test.ShouldNotBeNil)

	filename := filepath.Join(t.TempDir(), "path.png")
	path := []spatialmath.Pose2D{{}, spatialmath.NewPose2D(1, 0, 0), approach, score}
	test.That(t, savePath(path, approach, score, filename), test.ShouldBeNil)
	info, err := os.Stat(filename)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
