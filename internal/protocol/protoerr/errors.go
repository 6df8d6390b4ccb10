// Package protoerr provides error kinds shared by the wire-layer packages.
// This is a leaf package with no internal dependencies, designed to be
// imported by the codec, bit packer, and circuit packages without causing
// circular imports.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind classifies a protocol error.
type Kind int

const (
	// KindMalformed indicates a wire parse failure: unknown message id,
	// truncated block, zero-coding violation, or OSD parse error.
	KindMalformed Kind = iota + 1

	// KindMisaligned indicates a byte-aligned bit-packer operation was
	// invoked while the bit cursor was mid-byte.
	KindMisaligned

	// KindTimeout indicates a handshake, ack, logout, or ping deadline
	// expired.
	KindTimeout

	// KindNotConnected indicates an operation on a circuit that is not in
	// the Connected state.
	KindNotConnected

	// KindCapacityExceeded indicates a fixed or variable field overflowed
	// its declared size during encode.
	KindCapacityExceeded

	// KindIO indicates a socket or HTTP transport error.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindMisaligned:
		return "misaligned"
	case KindTimeout:
		return "timeout"
	case KindNotConnected:
		return "not connected"
	case KindCapacityExceeded:
		return "capacity exceeded"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is matching. Wrap with details via the
// constructors below or fmt.Errorf("...: %w", ErrMalformed).
var (
	ErrMalformed        = &Error{kind: KindMalformed}
	ErrMisaligned       = &Error{kind: KindMisaligned}
	ErrTimeout          = &Error{kind: KindTimeout}
	ErrNotConnected     = &Error{kind: KindNotConnected}
	ErrCapacityExceeded = &Error{kind: KindCapacityExceeded}
	ErrIO               = &Error{kind: KindIO}
)

// Error is a protocol error with a kind and an optional detail message and
// wrapped cause.
type Error struct {
	kind   Kind
	msg    string
	nested error
}

func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.nested != nil:
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.nested)
	case e.msg != "":
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	case e.nested != nil:
		return fmt.Sprintf("%s: %v", e.kind, e.nested)
	default:
		return e.kind.String()
	}
}

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.nested }

// Is reports whether target is a protocol error of the same kind.
// This makes errors.Is(err, protoerr.ErrMalformed) match any malformed
// error regardless of its detail message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// Malformed builds a malformed-data error with a formatted detail message.
func Malformed(format string, args ...any) error {
	return &Error{kind: KindMalformed, msg: fmt.Sprintf(format, args...)}
}

// Misaligned builds a misalignment error with a formatted detail message.
func Misaligned(format string, args ...any) error {
	return &Error{kind: KindMisaligned, msg: fmt.Sprintf(format, args...)}
}

// Timeout builds a timeout error with a formatted detail message.
func Timeout(format string, args ...any) error {
	return &Error{kind: KindTimeout, msg: fmt.Sprintf(format, args...)}
}

// NotConnected builds a not-connected error with a formatted detail message.
func NotConnected(format string, args ...any) error {
	return &Error{kind: KindNotConnected, msg: fmt.Sprintf(format, args...)}
}

// CapacityExceeded builds an encode-overflow error with a formatted detail
// message.
func CapacityExceeded(format string, args ...any) error {
	return &Error{kind: KindCapacityExceeded, msg: fmt.Sprintf(format, args...)}
}

// IO wraps a transport error.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindIO, nested: err}
}

// KindOf returns the kind of err if it is (or wraps) a protocol error,
// and zero otherwise.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.kind
	}
	return 0
}
