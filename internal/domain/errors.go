package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the database.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is matched by every *ValidationError.
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicate is matched by every *DuplicateError.
var ErrDuplicate = errors.New("duplicate value")

// Error codes carried in the body of every error response.
const (
	CodeInvalid                = "invalid"
	CodeInvalidQueryParam      = "invalidQueryParam"
	CodeInvalidRequestBody     = "invalidRequestBody"
	CodeWrongRequestFormat     = "wrongRequestFormat"
	CodeAuthHeaderMissing      = "authHeaderMissing"
	CodeAuthHeaderMalformed    = "authHeaderMalformed"
	CodeAuthTokenExpired       = "authTokenExpired"
	CodeAuthTokenInvalid       = "authTokenInvalid"
	CodeAuthCredentialsMissing = "authCredentialsMissing"
	CodeAuthCredentialsUnknown = "authCredentialsUnknown"
	CodeAuthCredentialsInvalid = "authCredentialsInvalid"
	CodeForbidden              = "forbidden"
	CodeRecordNotFound         = "recordNotFound"
	CodeResourceNotFound       = "resourceNotFound"
	CodeTooManyRequests        = "tooManyRequests"
	CodeUnexpected             = "unexpected"
)

// UnexpectedMessage replaces the message of errors that are not exposed.
const UnexpectedMessage = "An unexpected error occurred"

// Error is an HTTP-facing error: a status, a machine-readable code, a
// human-readable message and optional extra properties that are merged into
// the response body. Messages are only sent to clients when Expose is true.
type Error struct {
	Status     int
	Code       string
	Message    string
	Properties map[string]any
	Expose     bool
}

// NewError builds an exposed error.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Expose: true}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// With returns a copy of e with an extra body property.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Properties = make(map[string]any, len(e.Properties)+1)
	for k, v := range e.Properties {
		cp.Properties[k] = v
	}
	cp.Properties[key] = value
	return &cp
}

// InvalidQueryParam reports a malformed or disallowed query parameter.
func InvalidQueryParam(param, message string) *Error {
	return NewError(http.StatusBadRequest, CodeInvalidQueryParam, message).With("queryParam", param)
}

// RecordNotFound reports that no record of the given kind has the given id.
func RecordNotFound(kind, id string) *Error {
	return NewError(http.StatusNotFound, CodeRecordNotFound, fmt.Sprintf("No %s found with ID %s", kind, id))
}

// Forbidden reports that the authenticated user may not perform an action.
func Forbidden() *Error {
	return NewError(http.StatusForbidden, CodeForbidden,
		"You are not authorized to perform this action; authenticate with a user account that has more privileges")
}

// FieldError describes why a single property failed validation.
type FieldError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError collects every invalid property of an entity.
// The zero value is not usable; construct it with NewValidationError.
type ValidationError struct {
	Entity string
	Errors map[string]FieldError
}

// NewValidationError returns an empty ValidationError for the named entity
// (e.g. "Trip").
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Errors: map[string]FieldError{}}
}

// Add records a failure for path. The first failure recorded for a path wins.
func (e *ValidationError) Add(path, kind, message string, value any) {
	if _, exists := e.Errors[path]; exists {
		return
	}
	e.Errors[path] = FieldError{Kind: kind, Message: message, Path: path, Value: value}
}

// Has reports whether path already has a recorded failure.
func (e *ValidationError) Has(path string) bool {
	_, ok := e.Errors[path]
	return ok
}

// Merge copies every failure of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for _, fe := range other.Errors {
		e.Add(fe.Path, fe.Kind, fe.Message, fe.Value)
	}
}

// OrNil returns e when it holds at least one failure, nil otherwise.
// Returning an untyped nil keeps `err != nil` checks honest.
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Errors))
	for p := range e.Errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p + ": " + e.Errors[p].Message
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrValidation) true for every *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateError is returned by the repo layer when a unique constraint
// rejects a write. Field is the public property name the constraint guards.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
