package boss

import (
	"errors"
	"fmt"
)

// ConfigError names the field of a boss document that failed to load.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("boss config: %s: %s", e.Field, e.Msg)
}

func fieldErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ErrUnknownAttack is logged when a selected attack id has no definition.
var ErrUnknownAttack = errors.New("boss: attack not found")
