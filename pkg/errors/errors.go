// Package errors provides coded errors for the diceplan CLI and HTTP
// service.
//
// Domain packages such as plan and search return plain sentinel errors.
// The surfaces that report to people and clients wrap those in an [*Error]
// so that the code survives the trip to a JSON body or an exit message:
//
//	err := errors.New(errors.ErrCodeInvalidInput, "target die must have at least 1 side, got %d", target)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeBackend, redisErr, "open cache")
//
// Codes prefixed INVALID_ describe bad input and map to HTTP 400. The
// remaining codes describe failures on the serving side.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidHeuristic Code = "INVALID_HEURISTIC"

	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeBackend     Code = "BACKEND_ERROR" // cache, dump store
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// HTTPStatus returns the response status used for the code. Unknown codes
// are internal errors.
func (c Code) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidFormat, ErrCodeInvalidHeuristic:
		return http.StatusBadRequest
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a code, a message for people, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] but records cause, which stays reachable through
// the standard errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message returns the text to show a user: the message of the first
// *Error in the chain without its code, otherwise err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
