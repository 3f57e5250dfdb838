package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a device or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller does not own the device.
	ErrUnauthorized = errors.New("device is not owned by caller")
	// ErrValidation marks malformed input. Use ValidationError for detail.
	ErrValidation = errors.New("validation failed")
	// ErrTransport marks a storage fault during commit or delete.
	ErrTransport = errors.New("storage failure")
)

// ValidationError identifies the offending field and, inside a batch, the
// index of the offending record. Index is -1 outside of batches.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for a single record.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AtIndex returns a copy of the error attributed to record i of a batch.
func (e *ValidationError) AtIndex(i int) *ValidationError {
	c := *e
	c.Index = i
	return &c
}

// asValidationError attaches index to err when err is a ValidationError,
// otherwise it wraps err as a generic validation failure for that record.
func asValidationError(err error, index int) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.AtIndex(index)
	}
	return &ValidationError{Index: index, Reason: err.Error()}
}
