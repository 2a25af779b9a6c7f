package common

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is authored either as integer milliseconds (1500) or as a Go
// duration string ("1.5s").
type Duration time.Duration

func Millis(ms int) Duration {
	return Duration(time.Duration(ms) * time.Millisecond)
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if ms, err := strconv.ParseFloat(value.Value, 64); err == nil {
		if ms < 0 {
			return fmt.Errorf("line %d: negative duration %s", value.Line, value.Value)
		}
		*d = Duration(time.Duration(ms * float64(time.Millisecond)))
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: negative duration %s", value.Line, value.Value)
	}
	*d = Duration(parsed)
	return nil
}
