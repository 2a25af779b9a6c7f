package story

import (
	"errors"
	"fmt"
)

// ConfigError names the part of a story document that failed to load.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("story config: %s: %s", e.Field, e.Msg)
}

func fieldErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

var (
	// ErrUnknownLabel is logged when a jump names a label the script does
	// not define. The jump is skipped.
	ErrUnknownLabel = errors.New("story: label not found")

	ErrNoChoice    = errors.New("story: no choice pending")
	ErrChoiceRange = errors.New("story: choice out of range")
)
