// Package apperr classifies the failures the extractor, layout engine and
// transport can report, so callers can map them to a response without string
// matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Class is the handling category of an error.
type Class int

const (
	// Internal is anything the caller cannot fix by changing the request.
	Internal Class = iota
	// Invalid marks missing or malformed input.
	Invalid
	// NoMatch marks a successful run that found nothing.
	NoMatch
	// Timeout marks work abandoned because its context ended.
	Timeout
)

func (c Class) String() string {
	switch c {
	case Invalid:
		return "invalid"
	case NoMatch:
		return "no_match"
	case Timeout:
		return "timeout"
	default:
		return "internal"
	}
}

var (
	ErrMissingText  = errors.New("text not provided")
	ErrMissingNodes = errors.New("nodes not provided")
	ErrMissingEdges = errors.New("edges not provided")
	ErrEmptyLabel   = errors.New("empty label")
	ErrLabelTooLong = errors.New("label too long")
	ErrNoRelations  = errors.New("no relationships found")
)

// Error wraps an underlying error with its class and the operation that failed.
type Error struct {
	Class   Class
	Op      string
	Err     error
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Class.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err. A nil err stays nil.
func Wrap(class Class, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Class: class, Op: op, Err: err, Message: msg}
}

// InvalidInput reports a missing or malformed field.
func InvalidInput(op string, err error) error {
	return &Error{Class: Invalid, Op: op, Err: err}
}

// FromContext turns a context error into a Timeout error.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Class: Timeout, Op: op, Err: err, Message: "operation abandoned"}
}

// ClassOf returns the class of err. Bare context errors count as Timeout.
func ClassOf(err error) Class {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Class
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout
	}
	return Internal
}

func IsInvalid(err error) bool { return err != nil && ClassOf(err) == Invalid }
func IsTimeout(err error) bool { return err != nil && ClassOf(err) == Timeout }
