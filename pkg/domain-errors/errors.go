// Package dErrors defines coded domain errors.
//
// Services translate infrastructure facts (pkg/platform/sentinel) and
// upstream failures into these coded errors; the HTTP layer maps codes onto
// statuses via httputil.WriteError. Messages on 4xx codes are shown to
// callers, so they must be stable and must not leak upstream detail.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks missing or malformed caller input. No side effects
	// have occurred when it is returned.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput marks a malformed identifier or enum value.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks an unreadable request (bad JSON, wrong shape).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks a missing or invalid session credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks an unknown tenant, submission or registration.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a claim already taken or a duplicate resident.
	CodeConflict Code = "conflict"
	// CodeRateLimited marks caller-side throttling (login attempts) and
	// upstream throttling that exhausted its retry budget.
	CodeRateLimited Code = "rate_limited"
	// CodeUpstreamAuth marks an expired or revoked document-service
	// credential. Never retried; the message points at re-authentication.
	CodeUpstreamAuth Code = "upstream_auth_error"
	// CodeUpstream marks any other storage/templating/SMS failure.
	CodeUpstream Code = "upstream_error"
	// CodeInternal marks an unexpected failure. Detail is logged server-side
	// only.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It wraps an optional cause for logging
// while exposing only Code and Message to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and caller-safe message to an underlying error.
// The cause stays reachable through errors.Is/As for server-side logging.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether the outermost coded error carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost coded error, or CodeInternal when
// the error is not coded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message of a coded error, or an empty
// string for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code onto its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamAuth, CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
