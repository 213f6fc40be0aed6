// Package result provides the closed outcome type used by every data-access
// call in Bookpedia. An operation either succeeds with a value or fails with
// one of a fixed set of error kinds; free-form error messages never cross the
// data layer.
package result

import "errors"

// Kind identifies a data-access failure. The set is closed: remote failures
// map to one of six kinds, local failures to one of two, and nothing else is
// allowed past the repository boundary.
type Kind int

const (
	// KindRequestTimeout indicates the remote request timed out.
	KindRequestTimeout Kind = iota + 1
	// KindTooManyRequests indicates the remote API rejected the request due to rate limiting.
	KindTooManyRequests
	// KindNoInternet indicates the remote host could not be resolved or reached.
	KindNoInternet
	// KindServer indicates a 5xx response from the remote API.
	KindServer
	// KindSerialization indicates the response payload could not be decoded.
	KindSerialization
	// KindUnknown covers any other remote failure.
	KindUnknown
	// KindDiskFull indicates the local store failed to persist a record.
	KindDiskFull
	// KindLocalUnknown covers any other local failure.
	KindLocalUnknown
	// KindCanceled carries a context cancellation back through the normal
	// return path. It is not part of the data-error taxonomy: callers drop
	// canceled outcomes before reducing them into state, and it has no
	// user-facing message.
	KindCanceled
)

// Error implements the error interface so a Kind can travel through
// error-returning call chains and be recovered with errors.As.
func (k Kind) Error() string {
	switch k {
	case KindRequestTimeout:
		return "request timeout"
	case KindTooManyRequests:
		return "too many requests"
	case KindNoInternet:
		return "no internet"
	case KindServer:
		return "server error"
	case KindSerialization:
		return "serialization error"
	case KindDiskFull:
		return "disk full"
	case KindLocalUnknown:
		return "unknown local error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown error"
	}
}

// Message returns the human-readable text shown to the user in place of
// results. Every data kind maps to exactly one message; KindCanceled has none
// because it must never be shown.
func (k Kind) Message() string {
	switch k {
	case KindRequestTimeout:
		return "The search request timed out. Please try again."
	case KindTooManyRequests:
		return "You've made too many requests. Please wait a moment."
	case KindNoInternet:
		return "Couldn't reach the book catalog. Check your internet connection."
	case KindServer:
		return "The book catalog returned an error. Please try again later."
	case KindSerialization:
		return "Received an unreadable response from the book catalog."
	case KindDiskFull:
		return "Couldn't save the book. Your disk may be full."
	case KindLocalUnknown:
		return "Something went wrong accessing your saved books."
	case KindCanceled:
		return ""
	default:
		return "Oops, something went wrong."
	}
}

// IsRemote reports whether the kind describes a remote-catalog failure.
func (k Kind) IsRemote() bool {
	return k >= KindRequestTimeout && k <= KindUnknown
}

// IsLocal reports whether the kind describes a local-store failure.
func (k Kind) IsLocal() bool {
	return k == KindDiskFull || k == KindLocalUnknown
}

// Result is a two-variant outcome: a success holding a value, or an error
// holding a Kind. Exactly one variant is ever populated; the zero value is
// not a valid Result and the Ok/Err constructors are the only way in.
type Result[T any] struct {
	value T
	kind  Kind
	ok    bool
}

// Ok creates a success Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Err creates an error Result holding the given kind.
func Err[T any](kind Kind) Result[T] {
	return Result[T]{kind: kind}
}

// IsOk reports whether the Result is the success variant.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr reports whether the Result is the error variant.
func (r Result[T]) IsErr() bool { return !r.ok }

// Canceled reports whether the Result carries a context cancellation rather
// than a data error.
func (r Result[T]) Canceled() bool { return !r.ok && r.kind == KindCanceled }

// Value returns the success value. It is the zero value of T when the Result
// is an error.
func (r Result[T]) Value() T { return r.value }

// Kind returns the error kind, or zero when the Result is a success.
func (r Result[T]) Kind() Kind {
	if r.ok {
		return 0
	}
	return r.kind
}

// Unwrap converts the Result to Go's (value, error) convention.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.kind
}

// OnSuccess runs fn with the value when the Result is a success and returns
// the receiver unchanged for chaining.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.ok {
		fn(r.value)
	}
	return r
}

// OnError runs fn with the kind when the Result is an error and returns the
// receiver unchanged for chaining.
func (r Result[T]) OnError(fn func(Kind)) Result[T] {
	if !r.ok {
		fn(r.kind)
	}
	return r
}

// Map applies fn to the value of a success Result and passes an error Result
// through untouched. fn is never invoked on the error variant.
//
// Go does not allow type parameters on methods, so Map is a function.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Err[U](r.kind)
	}
	return Ok(fn(r.value))
}

// From folds Go's (value, error) convention into a Result. A nil error yields
// a success; a Kind error (possibly wrapped) keeps its kind; anything else
// becomes fallback.
func From[T any](v T, err error, fallback Kind) Result[T] {
	if err == nil {
		return Ok(v)
	}
	return Err[T](AsKind(err, fallback))
}

// AsKind recovers a Kind from an error chain, returning fallback when the
// chain carries no Kind.
func AsKind(err error, fallback Kind) Kind {
	var kind Kind
	if errors.As(err, &kind) {
		return kind
	}
	return fallback
}
