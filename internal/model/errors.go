package model

import (
	"errors"
	"fmt"
)

// ErrInvariant is the sentinel matched by every InvariantViolation.
var ErrInvariant = errors.New("invariant violation")

// ConfigurationError reports an invalid model or run configuration.
// It is fatal to construction: the caller must fix the input and rebuild.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Configf builds a ConfigurationError for field with a formatted reason.
func Configf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantViolation reports internal state that correct initialization and
// monotonic growth should make unreachable. It indicates a logic bug.
type InvariantViolation struct {
	Op     string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariant, e.Op, e.Reason)
}

// Is reports whether target is ErrInvariant.
func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariant
}
