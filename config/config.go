// Package config reads the robot configuration and persists module calibration.
package config

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/swerve/components/base/swerve"
	"go.viam.com/swerve/logging"
	"go.viam.com/swerve/services/docking"
	"go.viam.com/swerve/utils"
)

// Config is the whole robot configuration.
type Config struct {
	ConfigFilePath  string
	Chassis         swerve.Config
	Docking         docking.Config
	Targets         []docking.TargetConfig
	CalibrationFile string
	Log             logging.FileConfig
}

// rawConfig is the on-disk form. Sections stay as attribute maps until they are decoded
// over their defaults.
type rawConfig struct {
	Chassis         AttributeMap   `json:"chassis"`
	Docking         AttributeMap   `json:"docking"`
	Targets         []AttributeMap `json:"targets"`
	CalibrationFile string         `json:"calibration_file"`
	Log             AttributeMap   `json:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Chassis: swerve.DefaultConfig(), Docking: docking.DefaultConfig()}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Chassis.Validate("chassis"); err != nil {
		return err
	}
	if err := c.Docking.Validate("docking"); err != nil {
		return err
	}
	names := map[string]bool{}
	for i, t := range c.Targets {
		path := fmt.Sprintf("targets.%d", i)
		if t.Name == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "name")
		}
		if names[t.Name] {
			return utils.NewConfigValidationError(path, errors.New("duplicate target name"))
		}
		names[t.Name] = true
		if _, err := t.Target(); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// FindTarget returns the target with the given name.
func (c *Config) FindTarget(name string) (docking.Target, error) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t.Target()
		}
	}
	return docking.Target{}, errors.Errorf("no docking target named %q", name)
}

// TargetsTable prints a table of the docking targets, with columns of name, tag, approach and score pose.
func (c *Config) TargetsTable() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Tag", "Approach", "Score"})
	for i, tc := range c.Targets {
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			tc.Name,
			tc.AprilTagID,
			fmt.Sprintf("X:%.3f, Y:%.3f, Heading:%.1f", tc.Approach[0], tc.Approach[1], tc.Approach[2]),
			fmt.Sprintf("X:%.3f, Y:%.3f, Heading:%.1f", tc.Score[0], tc.Score[1], tc.Score[2]),
		})
	}
	return t.Render()
}
