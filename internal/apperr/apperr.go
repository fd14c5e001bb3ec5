package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	Internal Kind = iota
	NotFound
	InvalidInput
	Conflict
	Unauthorized
	TooManyRequests
)

// Error is a domain error with a stable machine-readable code.
// Sentinels are declared once per package and compared with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap attaches a cause to e. errors.Is(wrapped, e) still holds.
func Wrap(e *Error, cause error) error {
	return &wrapped{sentinel: e, cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

type wrapped struct {
	sentinel *Error
	cause    error
}

func (w *wrapped) Error() string {
	if w.cause == nil {
		return w.sentinel.Error()
	}
	return w.sentinel.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	if w.cause == nil {
		return []error{w.sentinel}
	}
	return []error{w.sentinel, w.cause}
}

// As extracts the classified error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns Internal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

func HTTPStatus(k Kind) int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Public returns what may be shown to a client: an HTTP status, the error code and a message.
// Causes of internal errors are never exposed.
func Public(err error) (status int, code, message string) {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError, "internal", "internal error"
	}
	if e.Kind == Internal {
		return HTTPStatus(e.Kind), e.Code, e.Error()
	}
	return HTTPStatus(e.Kind), e.Code, err.Error()
}
