package errx

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind tags where a failure came from. Handlers never inspect raw upstream
// payloads; they only look at the Kind and let Normalize build the envelope.
type Kind uint8

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindUpstream
	KindIncompleteData
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindUpstream:
		return "upstream"
	case KindIncompleteData:
		return "incomplete_upstream_data"
	default:
		return "unexpected"
	}
}

// Status is the HTTP status a locally detected failure of this kind maps to.
// Upstream failures carry their own status, see Upstream.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Upstream describes a failed call to the identity provider. Status is zero
// when no response was received (connection refused, timeout).
type Upstream struct {
	Status int
	Method string
	URL    string
	Body   []byte
}

// Error is the tagged error type returned across every package boundary of
// the gateway.
type Error struct {
	Kind Kind

	// Description is the public message. Upstream errors usually leave it
	// empty so the operation policy and upstream body decide.
	Description string

	Upstream *Upstream

	policy *Policy
	cause  error // always carries a stack trace
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Upstream != nil && e.Upstream.Status == 0:
		return fmt.Sprintf("upstream %s %s: %v", e.Upstream.Method, e.Upstream.URL, e.cause)
	case e.Upstream != nil:
		return fmt.Sprintf("upstream %s %s: status %d", e.Upstream.Method, e.Upstream.URL, e.Upstream.Status)
	case e.Description != "":
		return e.Kind.String() + ": " + e.Description
	case e.cause != nil:
		return e.Kind.String() + ": " + e.cause.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Policy returns the operation policy attached to the error, if any.
func (e *Error) Policy() *Policy { return e.policy }

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// StackTrace returns the frames captured when the error was constructed.
func (e *Error) StackTrace() pkgerrors.StackTrace {
	var st stackTracer
	if errors.As(e.cause, &st) {
		return st.StackTrace()
	}
	return nil
}

func newLocal(kind Kind, desc string) *Error {
	return &Error{
		Kind:        kind,
		Description: desc,
		cause:       pkgerrors.New(desc),
	}
}

// Validation reports malformed or missing input. Always HTTP 400.
func Validation(desc string) *Error { return newLocal(KindValidation, desc) }

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) *Error {
	return newLocal(KindValidation, fmt.Sprintf(format, args...))
}

// Unauthenticated reports a missing or malformed bearer token.
func Unauthenticated(desc string) *Error { return newLocal(KindUnauthenticated, desc) }

// Forbidden reports a local access-policy denial.
func Forbidden(desc string) *Error { return newLocal(KindForbidden, desc) }

// IncompleteData reports an upstream record missing fields the gateway needs.
func IncompleteData(desc string) *Error { return newLocal(KindIncompleteData, desc) }

// Unexpected wraps anything uncategorised. Existing *Error values pass
// through untouched.
func Unexpected(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnexpected, cause: pkgerrors.WithStack(err)}
}

// FromUpstream builds an upstream error. cause may be nil when a response was
// received and only the status is interesting.
func FromUpstream(u Upstream, cause error) *Error {
	if cause == nil {
		cause = fmt.Errorf("identity provider responded %d", u.Status)
	}
	return &Error{
		Kind:     KindUpstream,
		Upstream: &u,
		cause:    pkgerrors.WithStack(cause),
	}
}

// KindOf classifies err. Errors that are not *Error are unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// UpstreamStatus returns the HTTP status the identity provider answered with,
// or zero when err is not an upstream error or no response was received.
func UpstreamStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Upstream != nil {
		return e.Upstream.Status
	}
	return 0
}
