package domain

import (
	"errors"
	"fmt"
)

// ErrViolationsDetected is matched by every PolicyError
var ErrViolationsDetected = errors.New("Accessibility violations detected")

// InputError reports an input that could not be resolved into an auditable document.
// It is always returned before the auditor runs.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates an InputError with an optional cause
func NewInputError(message string, err error) *InputError {
	return &InputError{Message: message, Err: err}
}

// AuditorError reports a failure of the auditor itself
type AuditorError struct {
	Op  string
	Err error
}

func (e *AuditorError) Error() string {
	return fmt.Sprintf("auditor %s failed: %v", e.Op, e.Err)
}

func (e *AuditorError) Unwrap() error {
	return e.Err
}

// NewAuditorError creates an AuditorError for the named operation
func NewAuditorError(op string, err error) *AuditorError {
	return &AuditorError{Op: op, Err: err}
}

// PolicyError is returned when fail-fast is enabled and the audit found violations.
// The report that triggered it is attached.
type PolicyError struct {
	Report *Report
}

func (e *PolicyError) Error() string {
	return ErrViolationsDetected.Error()
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrViolationsDetected
}

// ConfigError reports an invalid or unreadable configuration
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError
func NewConfigError(message string, err error) *ConfigError {
	return &ConfigError{Message: message, Err: err}
}

// IsInputError reports whether err is or wraps an InputError
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

// IsPolicyError reports whether err is or wraps a PolicyError
func IsPolicyError(err error) bool {
	var policyErr *PolicyError
	return errors.As(err, &policyErr)
}
