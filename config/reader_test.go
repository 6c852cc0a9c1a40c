package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/swerve/components/base/swerve"
	"go.viam.com/swerve/services/docking"
)

const sampleConfig = `{
	"chassis": {
		"max_module_speed": 4,
		"limiter": {"acceleration_limit": 9, "slow_acceleration_limit": 3},
		"teleop": {"slow_velocity": 0.5}
	},
	"docking": {
		"translation_pid": {"p": 4},
		"heading_bias_deg": 0,
		"period": "10ms"
	},
	"targets": [
		{"name": "reef_a", "approach": [2, 0, 0], "score": [2.5, 0, 180], "april_tag_id": 7}
	],
	"calibration_file": "${CALIBRATION_DIR}/offsets.json",
	"log": {"path": "/tmp/swerve.log", "max_size_mb": 5}
}`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robot.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestRead(t *testing.T) {
	t.Setenv("CALIBRATION_DIR", "/var/lib/swerve")
	path := writeConfig(t, sampleConfig)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.CalibrationFile, test.ShouldEqual, "/var/lib/swerve/offsets.json")

	test.That(t, cfg.Chassis.MaxModuleSpeed, test.ShouldEqual, 4)
	test.That(t, cfg.Chassis.Limiter.AccelerationLimit, test.ShouldEqual, 9)
	test.That(t, cfg.Chassis.Teleop.SlowVelocity, test.ShouldEqual, 0.5)
	// omitted keys keep their defaults
	test.That(t, cfg.Chassis.Modules, test.ShouldResemble, swerve.DefaultConfig().Modules)
	test.That(t, cfg.Chassis.Teleop.MaxVelocity, test.ShouldEqual, swerve.DefaultMaxVelocity)

	test.That(t, cfg.Docking.Translation.P, test.ShouldEqual, 4)
	test.That(t, cfg.Docking.HeadingBiasDeg, test.ShouldEqual, 0)
	test.That(t, cfg.Docking.Period, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.Docking.BlendDistance, test.ShouldEqual, docking.DefaultConfig().BlendDistance)

	test.That(t, cfg.Log.Path, test.ShouldEqual, "/tmp/swerve.log")
	test.That(t, cfg.Log.MaxSizeMB, test.ShouldEqual, 5)

	target, err := cfg.FindTarget("reef_a")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, target.TagID, test.ShouldEqual, 7)
	test.That(t, target.ScorePose.X(), test.ShouldEqual, 2.5)
	test.That(t, target.ScorePose.Theta, test.ShouldAlmostEqual, 3.141592653589793)

	_, err = cfg.FindTarget("reef_b")
	test.That(t, err, test.ShouldNotBeNil)

	printed := cfg.TargetsTable()
	test.That(t, printed, test.ShouldContainSubstring, "reef_a")
	test.That(t, printed, test.ShouldContainSubstring, "X:2.500, Y:0.000, Heading:180.0")
}

func TestReadModulesReplaceDefaults(t *testing.T) {
	cfg, err := FromReader("", strings.NewReader(`{"chassis": {"modules": [
		{"name": "a", "x": 0.25, "y": 0.25},
		{"name": "b", "x": 0.25, "y": -0.25},
		{"name": "c", "x": -0.25, "y": 0.25},
		{"name": "d", "x": -0.25, "y": -0.25}
	]}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Chassis.Modules[0], test.ShouldResemble, swerve.ModuleConfig{Name: "a", X: 0.25, Y: 0.25})

	_, err = FromReader("", strings.NewReader(`{"chassis": {"modules": [{"name": "a"}]}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 4 modules")
}

func TestReadErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		config string
		err    string
	}{
		{"not json", `{`, "failed to decode"},
		{"unknown key", `{"chassis": {"max_speed": 3}}`, "max_speed"},
		{"wrong type", `{"docking": {"blend_distance": "far"}}`, "docking"},
		{"invalid limiter", `{"chassis": {"limiter": {"acceleration_limit": -1}}}`, "acceleration_limit"},
		{"invalid scale", `{"docking": {"scoring_scale": {"min": 0.9, "max": 0.8}}}`, "scoring_scale"},
		{"unnamed target", `{"targets": [{"approach": [0, 0, 0]}]}`, "name"},
		{"duplicate target", `{"targets": [{"name": "a"}, {"name": "a"}]}`, "duplicate"},
		{"bad tag", `{"targets": [{"name": "a", "april_tag_id": -2}]}`, "april tag"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("", strings.NewReader(tc.config))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAttributeMap(t *testing.T) {
	am := AttributeMap{"period": "10ms", "blend_distance": 0.5}
	test.That(t, am.Has("period"), test.ShouldBeTrue)
	test.That(t, am.Has("heading_bias_deg"), test.ShouldBeFalse)

	cfg := docking.DefaultConfig()
	test.That(t, TransformAttributeMapToStruct(&cfg, am), test.ShouldBeNil)
	test.That(t, cfg.Period, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.BlendDistance, test.ShouldEqual, 0.5)
	test.That(t, cfg.HeadingBiasDeg, test.ShouldEqual, docking.DefaultConfig().HeadingBiasDeg)

	err := TransformAttributeMapToStruct(&cfg, AttributeMap{"blend_distanse": 0.5})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "blend_distanse")
}
