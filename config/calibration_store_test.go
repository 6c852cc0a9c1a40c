package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFileCalibrationStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration", "offsets.json")
	store := NewFileCalibrationStore(path)

	offsets, err := store.Load()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, offsets, test.ShouldBeEmpty)

	saved := map[string]float64{"front_left": -0.25, "back_right": 0.125}
	test.That(t, store.SaveOffsets(saved), test.ShouldBeNil)
	offsets, err = store.Load()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, offsets, test.ShouldResemble, saved)

	test.That(t, store.SaveOffsets(map[string]float64{"front_left": 0.5}), test.ShouldBeNil)
	offsets, err = store.Load()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, offsets, test.ShouldResemble, map[string]float64{"front_left": 0.5})

	entries, err := os.ReadDir(filepath.Dir(path))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)

	test.That(t, os.WriteFile(path, []byte("not json"), 0o600), test.ShouldBeNil)
	_, err = store.Load()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse")
}
