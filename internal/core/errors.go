package core

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the stage a fatal error came from.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindConnection
	KindRead
	KindSchema
	KindWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindRead:
		return "read"
	case KindSchema:
		return "schema"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// ExitCode is the process exit status for a failure of this kind.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindConfiguration:
		return 2
	case KindConnection:
		return 3
	case KindRead:
		return 4
	case KindSchema:
		return 5
	case KindWrite:
		return 6
	default:
		return 1
	}
}

// Error is a fatal load failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a fatal error of the given kind. A nil err yields nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to a process exit status; 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}

// MappingWarning reports a destination column with no CSV header.
type MappingWarning struct {
	Column   string
	Nullable bool
}

func (w MappingWarning) String() string {
	if w.Nullable {
		return fmt.Sprintf("column %s has no matching CSV header and will be NULL", w.Column)
	}
	return fmt.Sprintf("column %s has no matching CSV header but is NOT NULL; the insert will fail unless it has a default", w.Column)
}

// CoercionWarning reports a cell that could not be converted and was
// replaced with NULL.
type CoercionWarning struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("line %d, column %s: %s (value %q); using NULL", w.Line, w.Column, w.Reason, w.Value)
}
