package compression

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError.
var ErrConfiguration = errors.New("invalid compression configuration")

// ErrFrozen is returned by setters once a descriptor has been derived.
var ErrFrozen = errors.New("compression policy is frozen")

// ConfigurationError reports a parameter that cannot produce a projection data
// descriptor. Err holds the underlying cause when there is one.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configError(field string, value any, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
