package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/swerve/services/docking"
)

// Read reads a config from the given file, expanding environment variables first.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	var raw rawConfig
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}

	cfg := Default()
	cfg.ConfigFilePath = originalPath
	cfg.CalibrationFile = raw.CalibrationFile

	if raw.Chassis.Has("modules") {
		cfg.Chassis.Modules = nil
	}
	if err := decodeSection(&cfg.Chassis, raw.Chassis, "chassis"); err != nil {
		return nil, err
	}
	if err := decodeSection(&cfg.Docking, raw.Docking, "docking"); err != nil {
		return nil, err
	}
	if err := decodeSection(&cfg.Log, raw.Log, "log"); err != nil {
		return nil, err
	}
	for i, attrs := range raw.Targets {
		var t docking.TargetConfig
		if err := decodeSection(&t, attrs, fmt.Sprintf("targets.%d", i)); err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, t)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeSection(to interface{}, attrs AttributeMap, path string) error {
	if attrs == nil {
		return nil
	}
	if err := TransformAttributeMapToStruct(to, attrs); err != nil {
		return errors.Wrapf(err, "error decoding %q", path)
	}
	return nil
}
