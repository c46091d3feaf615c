// Package apperrors defines the user-facing error kinds of the auth flow.
// Each error carries the message shown in the form and the HTTP status the
// page is rendered with.
package apperrors

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies an AppError.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuthentication
	KindTooManyAttempts
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindTooManyAttempts:
		return "too_many_attempts"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Messages shown to the user.
const (
	MsgAllFieldsRequired     = "All fields are required."
	MsgCredentialsRequired   = "Email and password are required."
	MsgInvalidEmail          = "Invalid email address."
	MsgPasswordTooShort      = "Password must be at least 6 characters long."
	MsgPasswordTooLong       = "Password must be at most 72 bytes long."
	MsgInvalidGender         = "Please select a valid gender."
	MsgNameTooLong           = "Names must be at most 100 characters long."
	MsgEmailTaken            = "Email already registered. Please login or use a different email."
	MsgInvalidCredentials    = "Invalid email or password."
	MsgTooManyAttempts       = "Too many failed login attempts. Please try again later."
	MsgInternal              = "Something went wrong. Please try again later."
	MsgRegistrationSucceeded = "Registration successful! Redirecting to login..."
	MsgFormExpired           = "This form has expired. Please reload the page and try again."
)

// AppError is an error that can be shown to the user as is.
type AppError struct {
	Kind       Kind
	HTTPCode   int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewErrValidation reports missing or malformed input.
func NewErrValidation(message string) *AppError {
	return &AppError{Kind: KindValidation, HTTPCode: http.StatusBadRequest, Message: message}
}

// NewErrEmailIsTaken reports a duplicate registration.
func NewErrEmailIsTaken() *AppError {
	return &AppError{Kind: KindConflict, HTTPCode: http.StatusConflict, Message: MsgEmailTaken}
}

// NewErrInvalidCredentials never says which of email or password was wrong.
func NewErrInvalidCredentials() *AppError {
	return &AppError{Kind: KindAuthentication, HTTPCode: http.StatusUnauthorized, Message: MsgInvalidCredentials}
}

// NewErrTooManyAttempts reports a throttled client.
func NewErrTooManyAttempts(retryAfter time.Duration) *AppError {
	return &AppError{Kind: KindTooManyAttempts, HTTPCode: http.StatusTooManyRequests, Message: MsgTooManyAttempts, RetryAfter: retryAfter}
}

// NewErrInternalServerError hides err from the user but keeps it for logs.
func NewErrInternalServerError(err error) *AppError {
	return &AppError{Kind: KindInfrastructure, HTTPCode: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// As extracts an AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
