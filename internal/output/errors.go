package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// ErrNotLoggedIn indicates no usable credential at call time.
func ErrNotLoggedIn() *Error {
	return &Error{
		Code:    CodeAuth,
		Message: "Not logged in",
		Hint:    "Run: dvnt auth login",
	}
}

func ErrAuth(msg string) *Error {
	return &Error{
		Code:    CodeAuth,
		Message: msg,
		Hint:    "Run: dvnt auth login",
	}
}

// ErrStateMismatch indicates the OAuth callback state did not match the
// nonce generated when the flow started.
func ErrStateMismatch() *Error {
	return &Error{
		Code:    CodeStateMismatch,
		Message: "Authorization state mismatch",
		Hint:    "The callback did not come from the login attempt this client started. Retry: dvnt auth login",
	}
}

// ErrAuthDenied carries the provider's error description from the callback.
func ErrAuthDenied(description string) *Error {
	return &Error{
		Code:    CodeAuthDenied,
		Message: "Authorization denied",
		Hint:    description,
	}
}

// ErrMissingCode indicates a callback with neither a code nor an error.
func ErrMissingCode() *Error {
	return &Error{
		Code:    CodeAuthDenied,
		Message: "No authorization code received",
	}
}

// ErrTokenExchange indicates the authorization-code exchange failed.
func ErrTokenExchange(status int, detail string) *Error {
	return &Error{
		Code:       CodeTokenExchange,
		Message:    "Token exchange failed",
		Hint:       detail,
		HTTPStatus: status,
	}
}

// ErrRefreshFailed indicates a refresh-token exchange failed. The stale
// credential is left in place; the caller should force a re-login.
func ErrRefreshFailed(status int, detail string) *Error {
	return &Error{
		Code:       CodeTokenExchange,
		Message:    "Token refresh failed",
		Hint:       detail,
		HTTPStatus: status,
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: 403,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}
