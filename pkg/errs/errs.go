// Package errs provides the operation/kind error wrapper used across layers.
//
// A kind is a package sentinel (errors.New) describing the class of failure;
// the wrapped error is the underlying cause. errors.Is matches either.
package errs

import (
	"errors"
	"strings"
)

// Error annotates a failure with the operation that produced it and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Kind != nil && e.Err != nil:
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("unknown error")
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op. Returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind builds an error carrying only a kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// KindOf returns the first kind found in err's chain, or nil.
func KindOf(err error) error {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind != nil {
			return e.Kind
		}
		if e.Err == nil {
			return nil
		}
		err = e.Err
	}
	return nil
}
