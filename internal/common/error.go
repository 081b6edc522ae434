// Package common defines shared constants and sentinel errors used across
// the repository, service and CLI layers of credstore. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEntry = errors.New("duplicate entry")

	// ErrorIntegrity marks a write that touched more rows than the unique key
	// allows. Always reported together with ErrorDuplicateEntry.
	ErrorIntegrity = errors.New("integrity violation")

	// Input rejected before any query was issued.
	ErrorValidation = errors.New("validation error")

	// Backing store I/O failure, timeout or pool exhaustion. Not retried.
	ErrorTransient = errors.New("transient storage error")
)

// IntegrityError reports an update that affected Rows rows for a key that
// must be unique. It matches both ErrorIntegrity and ErrorDuplicateEntry.
type IntegrityError struct {
	Username string
	Rows     int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("updated %d rows for username %q, expected 1", e.Rows, e.Username)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrorIntegrity || target == ErrorDuplicateEntry
}

// Transient wraps a storage failure so it matches ErrorTransient while the
// driver error stays reachable through errors.As.
func Transient(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrorTransient, op, err)
}

// Validation wraps a reason so it matches ErrorValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
