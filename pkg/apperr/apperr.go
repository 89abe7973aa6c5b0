// Package apperr defines the closed set of failure kinds the API reports.
//
// Every error that should reach a client as something other than a 500 is an
// *Error carrying one Kind. The HTTP layer never inspects messages or type
// names to decide the status; it switches on Kind:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
//	switch apperr.KindOf(err) { case apperr.KindValidation: ... }
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the discriminant of an application error.
type Kind uint8

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
)

// Name is the wire name of the kind, used as the "name" field of problem bodies.
func (k Kind) Name() string {
	switch k {
	case KindNotFound:
		return "NotFoundError"
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindConflict:
		return "ConflictError"
	default:
		return "InternalServerError"
	}
}

// Status is the HTTP status reported for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string { return k.Name() }

// Error is an application error of a known kind.
type Error struct {
	Kind    Kind
	Message string
	// Errors holds field-level details for KindValidation.
	Errors map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Name()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Name(), e.Message)
}

// Is makes errors.Is match any *Error of the same kind, so the sentinels below
// work as kind probes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrConflict       = &Error{Kind: KindConflict}
)

func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func Internal() *Error                 { return &Error{Kind: KindInternal, Message: "Internal Server Error"} }

// Validation builds a validation error with per-field messages.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Errors: fields}
}

// KindOf returns the kind of err, or KindInternal for anything that is not an
// *Error (store failures, panics turned errors, etc).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Problem is the serialized form of an error.
type Problem struct {
	Name    string            `json:"name"`
	Message string            `json:"message,omitempty"`
	Status  int               `json:"status"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ToProblem converts err to its wire form. Internal errors never leak their
// message.
func ToProblem(err error) Problem {
	var e *Error
	if !errors.As(err, &e) {
		return Problem{
			Name:    KindInternal.Name(),
			Message: "Internal Server Error",
			Status:  http.StatusInternalServerError,
		}
	}
	return Problem{
		Name:    e.Kind.Name(),
		Message: e.Message,
		Status:  e.Kind.Status(),
		Errors:  e.Errors,
	}
}

// FromJSON decodes a problem body back into an *Error. Unknown names are an
// error rather than a guess.
func FromJSON(data []byte) (*Error, error) {
	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("apperr: decode problem: %w", err)
	}

	var kind Kind
	switch p.Name {
	case KindNotFound.Name():
		kind = KindNotFound
	case KindValidation.Name():
		kind = KindValidation
	case KindAuthentication.Name():
		kind = KindAuthentication
	case KindAuthorization.Name():
		kind = KindAuthorization
	case KindConflict.Name():
		kind = KindConflict
	case KindInternal.Name():
		kind = KindInternal
	default:
		return nil, fmt.Errorf("apperr: unknown problem name %q", p.Name)
	}

	return &Error{Kind: kind, Message: p.Message, Errors: p.Errors}, nil
}
