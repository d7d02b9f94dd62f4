package frame

import "fmt"

// ConfigError indicates an invalid geometry or pipeline setting.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
