package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// FileCalibrationStore keeps module calibration offsets, in turns keyed by module name,
// in a JSON file.
type FileCalibrationStore struct {
	path string
}

// NewFileCalibrationStore returns a store backed by path.
func NewFileCalibrationStore(path string) *FileCalibrationStore {
	return &FileCalibrationStore{path: path}
}

// Load returns the stored offsets. A missing file means no module has been calibrated.
func (s *FileCalibrationStore) Load() (map[string]float64, error) {
	offsets := map[string]float64{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return offsets, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &offsets); err != nil {
		return nil, errors.Wrapf(err, "cannot parse calibration file %s", s.path)
	}
	return offsets, nil
}

// SaveOffsets replaces the stored offsets. The file is replaced atomically.
func (s *FileCalibrationStore) SaveOffsets(offsets map[string]float64) (err error) {
	md, err := json.MarshalIndent(offsets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, os.Remove(tmp.Name()))
		}
	}()
	if _, err := tmp.Write(md); err != nil {
		return multierr.Combine(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
