// Package errors defines the errors content services return to the API layer.
//
// Cache failures never reach this package: services absorb them and fall
// back to the document store. A DomainError therefore always describes the
// request or the authoritative store, never the cache.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in API error responses.
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

var statusByCode = map[string]int{
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// DomainError is an error with a stable code and the HTTP status it maps to.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func newError(code, message, details string, err error) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    message,
		Details:    details,
		HTTPStatus: statusByCode[code],
		Err:        err,
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the store or backend error behind e, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports that no entity of kind exists under id. Private
// posts requested by anyone but their owner are reported the same way.
func NewNotFoundError(kind, id string) *DomainError {
	return newError(ErrCodeNotFound, kind+" not found", id, nil)
}

// NewValidationError reports a malformed request.
func NewValidationError(message, details string) *DomainError {
	return newError(ErrCodeValidation, message, details, nil)
}

// NewUnauthorizedError reports a request that needs a viewer and has none.
func NewUnauthorizedError(message string) *DomainError {
	return newError(ErrCodeUnauthorized, message, "", nil)
}

// NewForbiddenError reports a viewer acting on content they do not own.
func NewForbiddenError(message string) *DomainError {
	return newError(ErrCodeForbidden, message, "", nil)
}

// NewConflictError reports a write that clashes with existing content,
// such as a taken blog slug.
func NewConflictError(message, details string) *DomainError {
	return newError(ErrCodeConflict, message, details, nil)
}

// NewInternalError wraps a failure of the document store.
func NewInternalError(message string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeInternal, message, details, err)
}

// NewServiceUnavailableError reports that a dependency such as the pub/sub
// channel cannot serve the request.
func NewServiceUnavailableError(dependency string, err error) *DomainError {
	return newError(ErrCodeServiceUnavailable, dependency+" is unavailable", "", err)
}

// GetDomainError extracts the DomainError from err's chain.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a DomainError with code.
func HasCode(err error, code string) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool { return HasCode(err, ErrCodeValidation) }

// IsUnauthorized reports whether err is an unauthorized error.
func IsUnauthorized(err error) bool { return HasCode(err, ErrCodeUnauthorized) }

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool { return HasCode(err, ErrCodeForbidden) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return HasCode(err, ErrCodeConflict) }
