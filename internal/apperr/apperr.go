// Package apperr carries failures from the service layer to the transport
// boundary as typed kinds. Each kind maps to one HTTP status; the boundary
// responder renders the message and optional structured data.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindValidationFailed
	KindInvalidCredentials
	KindNotAuthenticated
	KindTokenVerificationFailed
	KindDuplicateEmail
	KindPersistenceFailed
)

var kindNames = map[Kind]string{
	KindInternal:                "Internal",
	KindBadRequest:              "BadRequest",
	KindValidationFailed:        "ValidationFailed",
	KindInvalidCredentials:      "InvalidCredentials",
	KindNotAuthenticated:        "NotAuthenticated",
	KindTokenVerificationFailed: "TokenVerificationFailed",
	KindDuplicateEmail:          "DuplicateEmail",
	KindPersistenceFailed:       "PersistenceFailed",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidationFailed:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials, KindNotAuthenticated, KindTokenVerificationFailed:
		return http.StatusUnauthorized
	case KindDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a tagged failure. Message is safe to show to clients; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Data    any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status is a shortcut for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// New builds an Error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error around cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// WithData attaches structured detail and returns e.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal when err carries none.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}

// StatusOf reports the HTTP status for err, 500 when err carries no kind.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
