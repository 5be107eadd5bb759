package bundle

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceUnavailable indicates the backing resource could not be
	// inspected or opened (missing, permission denied).
	ErrResourceUnavailable = errors.New("bundle: resource unavailable")
	// ErrIOFailure indicates a read or write failed mid-transfer.
	ErrIOFailure = errors.New("bundle: i/o failure")
	// ErrStateViolation indicates an operation was called in the wrong item state.
	ErrStateViolation = errors.New("bundle: invalid item state")
	// ErrSameFile indicates a copy whose destination is its own source.
	ErrSameFile = errors.New("bundle: destination is the source file")
)

// ItemError describes a failed item operation.
//
// errors.Is matches both Kind and the wrapped cause, so callers can test for
// ErrResourceUnavailable and fs.ErrNotExist on the same value.
type ItemError struct {
	Op   string
	Name string
	Kind error
	Err  error
}

func (e *ItemError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Kind)
	}
	return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Name, e.Kind, e.Err)
}

func (e *ItemError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(op, name string, err error) error {
	return &ItemError{Op: op, Name: name, Kind: ErrResourceUnavailable, Err: err}
}

func ioFailure(op, name string, err error) error {
	return &ItemError{Op: op, Name: name, Kind: ErrIOFailure, Err: err}
}

func stateViolation(op, name, reason string) error {
	return &ItemError{Op: op, Name: name, Kind: ErrStateViolation, Err: errors.New(reason)}
}
