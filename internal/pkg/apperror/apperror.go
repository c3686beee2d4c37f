package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Type classifies an error for the HTTP boundary.
type Type string

const (
	TypeValidation         Type = "VALIDATION"
	TypeUnauthorized       Type = "UNAUTHORIZED"
	TypeForbidden          Type = "FORBIDDEN"
	TypeGuestQuotaExceeded Type = "GUEST_QUOTA_EXCEEDED"
	TypeNotFound           Type = "NOT_FOUND"
	TypeConflict           Type = "CONFLICT"
	TypeQuotaExceeded      Type = "QUOTA_EXCEEDED"
	TypeUpstreamAuth       Type = "UPSTREAM_AUTH"
	TypeUpstreamQuota      Type = "UPSTREAM_QUOTA"
	TypeUpstreamFormat     Type = "UPSTREAM_FORMAT"
	TypeUpstreamTimeout    Type = "UPSTREAM_TIMEOUT"
	TypeUpstreamFailure    Type = "UPSTREAM_FAILURE"
	TypeInternal           Type = "INTERNAL"
)

// Error is the single error shape handed to the request boundary.
type Error struct {
	Code    int
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Type, so callers can write
// errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = &Error{Type: TypeValidation}
	ErrUnauthorized       = &Error{Type: TypeUnauthorized}
	ErrForbidden          = &Error{Type: TypeForbidden}
	ErrGuestQuotaExceeded = &Error{Type: TypeGuestQuotaExceeded}
	ErrNotFound           = &Error{Type: TypeNotFound}
	ErrConflict           = &Error{Type: TypeConflict}
	ErrQuotaExceeded      = &Error{Type: TypeQuotaExceeded}
	ErrUpstreamAuth       = &Error{Type: TypeUpstreamAuth}
	ErrUpstreamQuota      = &Error{Type: TypeUpstreamQuota}
	ErrUpstreamFormat     = &Error{Type: TypeUpstreamFormat}
	ErrUpstreamTimeout    = &Error{Type: TypeUpstreamTimeout}
	ErrUpstreamFailure    = &Error{Type: TypeUpstreamFailure}
)

func Validation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Type: TypeValidation, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Type: TypeForbidden, Message: message}
}

func GuestQuotaExceeded(message string) *Error {
	return &Error{Code: http.StatusForbidden, Type: TypeGuestQuotaExceeded, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Type: TypeNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Type: TypeConflict, Message: message}
}

func UpstreamAuth(message string, err error) *Error {
	return &Error{Code: http.StatusUnauthorized, Type: TypeUpstreamAuth, Message: message, Err: err}
}

func UpstreamQuota(message string, err error) *Error {
	return &Error{Code: http.StatusTooManyRequests, Type: TypeUpstreamQuota, Message: message, Err: err}
}

func UpstreamFormat(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Type: TypeUpstreamFormat, Message: message, Err: err}
}

func UpstreamTimeout(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Type: TypeUpstreamTimeout, Message: message, Err: err}
}

func UpstreamFailure(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Type: TypeUpstreamFailure, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Type: TypeInternal, Message: message, Err: err}
}
