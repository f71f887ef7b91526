package apperr

import (
	"errors"
	"net/http"
)

// Kinds of failure the planner reports to its callers. Domain errors wrap
// exactly one of them so the transport layer needs a single mapping.
var (
	Validation            = errors.New("validation failed")
	NotFound              = errors.New("not found")
	Conflict              = errors.New("conflict")
	DependencyUnavailable = errors.New("dependency unavailable")
	NotLinked             = errors.New("calendar not linked")
	Unauthorized          = errors.New("unauthorized")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Invalid is shorthand for a Validation error with a caller-facing reason.
func Invalid(reason string) error {
	return New(Validation, reason)
}

// Status maps err to the HTTP status the router answers with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, Validation), errors.Is(err, NotLinked):
		return http.StatusBadRequest
	case errors.Is(err, NotFound):
		return http.StatusNotFound
	case errors.Is(err, Conflict):
		return http.StatusConflict
	case errors.Is(err, Unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to API clients. Errors outside the
// taxonomy are reported generically.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return "something went wrong"
}
