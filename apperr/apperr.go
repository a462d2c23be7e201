// Package apperr defines the client-facing error taxonomy shared by the
// scoring engine, the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how a caller is expected to react.
type Kind int

const (
	// KindValidation is a malformed request, rejected before any mutation.
	KindValidation Kind = iota + 1
	// KindNotFound means the addressed row does not exist.
	KindNotFound
	// KindPrecondition means the request is well formed but the current state
	// blocks it (the caller can fix the state or force).
	KindPrecondition
	// KindConfiguration means the regatta or class setup is incomplete.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Machine-readable error codes.
const (
	CodeMissingBoatIdentity     = "MissingBoatIdentity"
	CodeDuplicateBoatInPayload  = "DuplicateBoatInPayload"
	CodeInvalidFleetCount       = "InvalidFleetCount"
	CodeInvalidFinalsGroups     = "InvalidFinalsGroups"
	CodeInvalidFleetScope       = "InvalidFleetScope"
	CodeInvalidPublicationCount = "InvalidPublicationCount"
	CodeInvalidDiscardRule      = "InvalidDiscardRule"
	CodeInvalidTimeFormat       = "InvalidTimeFormat"
	CodeInvalidRequest          = "InvalidRequest"
	CodeUnscoredRacesRemain     = "UnscoredRacesRemain"
	CodeNoPreviousFleetSet      = "NoPreviousFleetSet"
	CodeFleetSetHasResults      = "FleetSetHasResults"
	CodeCodeNotConfigured       = "CodeNotConfigured"
	CodeNotFound                = "NotFound"
)

// Error is a domain failure with a stable code and optional structured details
// (counts, offending boats or races).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so sentinel-style comparisons work:
// errors.Is(err, &apperr.Error{Code: apperr.CodeNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy carrying an extra detail entry.
func (e *Error) With(key string, value any) *Error {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

func newError(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(code, format string, args ...any) *Error {
	return newError(KindValidation, code, format, args...)
}

// Precondition builds a KindPrecondition error.
func Precondition(code, format string, args ...any) *Error {
	return newError(KindPrecondition, code, format, args...)
}

// Configuration builds a KindConfiguration error.
func Configuration(code, format string, args ...any) *Error {
	return newError(KindConfiguration, code, format, args...)
}

// NotFound builds a KindNotFound error for the named entity.
func NotFound(entity string, id any) *Error {
	return newError(KindNotFound, CodeNotFound, "%s %v not found", entity, id).With("entity", entity)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
