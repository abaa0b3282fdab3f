// Package errors provides comprehensive error handling utilities for leadconv.
//
// This file contains panic recovery utilities used at the command boundary so
// that a panic inside a pipeline stage surfaces as a logged error and a
// non-zero exit status instead of a crash dump.

package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

// PanicError represents an error that was created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Stage identifies the pipeline stage where the panic was recovered
	Stage string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Stage, e.PanicValue)
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s", e.Stage, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError for the given stage and panic value.
func NewPanicError(stage string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Stage:      stage,
	}
}

// Recover converts a panic into an error assigned to *err. It must be
// deferred directly by the function whose named error result it writes.
//
//	func (c *Command) run() (err error) {
//	    defer errors.Recover(&err, "train")
//	    ...
//	}
//
// If *err is already set, the panic is recorded as a wrapper around it so
// errors.Is still finds the original error.
func Recover(err *error, stage string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = errors.Wrapf(*err, "panic in %s: %v (original error)", stage, r)
		return
	}
	*err = NewPanicError(stage, r)
}

// SafeExecute runs fn and converts any panic into a PanicError.
func SafeExecute(stage string, fn func() error) (err error) {
	defer Recover(&err, stage)
	return fn()
}
