// Package kinderr defines the error taxonomy shared by the cluster
// supervisor, the async DB bridge, and the session store.
//
// These are kinds, not types: every error returned by this module carries
// one of the Kind values below so callers can branch with kinderr.Is
// instead of parsing messages.
package kinderr

import "errors"

// Kind identifies which error taxonomy bucket an error belongs to.
type Kind int

const (
	// Config covers misuse by the embedding program: null argv, zero
	// workers, zero port, invalid cookie name, invalid SameSite value.
	// Surfaced synchronously; the operation is refused.
	Config Kind = iota
	// TransientIO is a recoverable syscall error (interrupted, would-block).
	// Retried internally by the caller; rarely escapes a package boundary.
	TransientIO
	// IO is a non-recoverable syscall error (connection reset, file not
	// found, permission denied). Delivered to the handler; not retried.
	IO
	// Protocol is malformed input from a peer (bad request line, oversized
	// cookie, unparseable response). The request is closed.
	Protocol
	// Crash marks a worker that exited non-zero outside of shutdown.
	Crash
	// ShutdownRace marks a callback that fired after the server stopped
	// running; no user callback is invoked for it.
	ShutdownRace
	// Internal covers allocation failure and invariant violations on paths
	// that should be unreachable. Logged; the request yields a 5xx where
	// one can still be written.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case TransientIO:
		return "transient_io"
	case IO:
		return "io"
	case Protocol:
		return "protocol"
	case Crash:
		return "crash"
	case ShutdownRace:
		return "shutdown_race"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a kinded error with no cause.
func New(k Kind, msg string) error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap builds a kinded error around an existing cause.
func Wrap(k Kind, msg string, cause error) error {
	if cause == nil {
		return New(k, msg)
	}
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
