// Package fault defines the error kinds shared between the bridge components.
//
// A Kind classifies what went wrong (transport, protocol, auth, ...) so that
// the supervisor can pick the right recovery policy without string-matching
// error messages. Errors are created with New/Wrap and tested with Is:
//
//	if fault.Is(err, fault.TransportClosed) { ... reconnect ... }
package fault

import (
	"errors"
	"fmt"
)

// Kind is the classification of a bridge error.
type Kind string

const (
	TransportClosed   Kind = "transport-closed"
	TransportTimeout  Kind = "transport-timeout"
	ProtocolViolation Kind = "protocol-violation"
	AuthFailed        Kind = "auth-failed"
	APIFailed         Kind = "api-failed"
	SerialIO          Kind = "serial-io"
	BadRule           Kind = "bad-rule"
	BadProfile        Kind = "bad-profile"
	IOStorage         Kind = "io-storage"
)

// Error carries a kind, a human message and an optional wrapped cause.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates an error of the given kind.
func New(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches a kind and context to an underlying error. A nil err yields nil.
func Wrap(kind Kind, err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...), err: err}
}

// Is reports whether err (or anything it wraps) is of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	for {
		if errors.As(err, &fe) {
			if fe.Kind == kind {
				return true
			}
			err = fe.err
			continue
		}
		return false
	}
}

// KindOf returns the kind of the outermost fault error, or "" for plain errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
