package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// TransportError wraps a failure to reach the backing store. It is caught at
// the repository boundary: reads degrade to empty results, writes surface it
// to the caller as a "backend unavailable" outcome.
type TransportError struct {
	Op  string
	Err error
}

func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

func (err TransportError) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", err.Op, err.Err)
}

func (err TransportError) Unwrap() error { return err.Err }

func IsTransportError(err error) bool {
	_, ok := errors.Cause(err).(*TransportError)
	return ok
}

// PartialBatchError reports a multi-record write where some records failed
// while others succeeded. Failed entries are reported individually.
type PartialBatchError struct {
	Op     string
	Failed []FieldError // Field holds the record index or id
}

func (err PartialBatchError) Error() string {
	return fmt.Sprintf("%s: %d record(s) failed", err.Op, len(err.Failed))
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
