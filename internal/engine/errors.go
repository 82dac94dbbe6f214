package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/rewind/internal/dom"
	"github.com/roach88/rewind/internal/nodestore"
	"github.com/roach88/rewind/internal/recording"
)

// DiagnosticCode categorizes per-event failures.
type DiagnosticCode string

const (
	// CodeUnknownNode indicates an argument addressed a node that is not live.
	CodeUnknownNode DiagnosticCode = "UNKNOWN_NODE"

	// CodeBadArgument indicates a missing argument or one of the wrong shape.
	CodeBadArgument DiagnosticCode = "BAD_ARGUMENT"

	// CodeInconsistentTree indicates a parent/child mismatch or a mutation
	// that would break the tree (a cycle, a node attached twice).
	CodeInconsistentTree DiagnosticCode = "INCONSISTENT_TREE"

	// CodeHandlerPanic indicates a handler panicked. The panic was recovered
	// and the batch continued.
	CodeHandlerPanic DiagnosticCode = "HANDLER_PANIC"
)

// Diagnostic records one event that could not be applied cleanly. The
// reconstructed tree may be partially wrong after it; playback continues.
type Diagnostic struct {
	// Index is the position of the event counted from the last reset.
	Index int

	// Type is the event type.
	Type recording.Type

	// Code identifies the failure category.
	Code DiagnosticCode

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: event %d (%s): %v", d.Code, d.Index, d.Type, d.Err)
}

// Unwrap returns the underlying cause.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// ArgError reports a bad positional argument.
type ArgError struct {
	Pos int
	Err error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("arg %d: %v", e.Pos, e.Err)
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// IsUnknownNode returns true if err was caused by an unknown node id.
// Uses errors.Is to handle wrapped errors.
func IsUnknownNode(err error) bool {
	return errors.Is(err, dom.ErrUnknownNode)
}

func classify(err error) DiagnosticCode {
	switch {
	case IsUnknownNode(err):
		return CodeUnknownNode
	case errors.Is(err, nodestore.ErrInvalidAttach), errors.Is(err, nodestore.ErrDuplicateID):
		return CodeInconsistentTree
	default:
		return CodeBadArgument
	}
}
