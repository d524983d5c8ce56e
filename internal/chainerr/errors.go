// Package chainerr defines the error-kind taxonomy shared by every
// chainguard component: the project manager, the tool handlers, and the
// enforcement hook all classify failures into one of these kinds so the
// dispatcher can render a consistent, pattern-matchable text response.
package chainerr

import "fmt"

// Kind classifies a chainguard error for dispatcher-level handling and
// for the distinctive markers the agent is expected to pattern-match on.
type Kind string

const (
	InvalidInput    Kind = "INVALID_INPUT"
	PathUnsafe      Kind = "PATH_UNSAFE"
	ScopeMissing    Kind = "SCOPE_MISSING"
	SyntaxFail      Kind = "SYNTAX_FAIL"
	Timeout         Kind = "TIMEOUT"
	IOFail          Kind = "IO_FAIL"
	SubprocessFail  Kind = "SUBPROCESS_FAIL"
	DBFail          Kind = "DB_FAIL"
	HTTPFail        Kind = "HTTP_FAIL"
	AuthRequired    Kind = "AUTH_REQUIRED"
	SnapshotStale   Kind = "SNAPSHOT_STALE"
	BlockedByAlert  Kind = "BLOCKED_BY_ALERT"
	UnknownTool     Kind = "UNKNOWN_TOOL"
	Internal        Kind = "INTERNAL"
)

// Error is a chainguard error carrying a Kind alongside the usual message
// and wrapped cause, so callers can use errors.Is/errors.As against Kind
// via Is, or unwrap down to the underlying fault.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, chainerr.New(kind, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err, defaulting to Internal when err is
// not a *Error (or is nil, in which case the zero Kind is returned).
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
		return e.Kind
	}
	return Internal
}
