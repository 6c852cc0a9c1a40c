package motor

import "github.com/pkg/errors"

// NewUnsupportedNeutralModeError returns an error for a neutral mode the motor cannot apply.
func NewUnsupportedNeutralModeError(motorName string, mode NeutralMode) error {
	return errors.Errorf("motor named %s does not support neutral mode %s", motorName, mode)
}

// NewCommandError wraps a failed setpoint with the motor that rejected it.
func NewCommandError(motorName string, err error) error {
	return errors.Wrapf(err, "motor named %s rejected command", motorName)
}
