package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrInvalidCredentials is returned for unknown users and bad passwords
	// alike, so the caller cannot tell which part failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive is returned when the account has been deactivated.
	ErrAccountInactive = errors.New("your account is inactive, please contact support")
	// ErrUserAlreadyExists is returned when the registration email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUsernameTaken is returned when the registration username is taken.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrWeakPassword is returned when a password fails the strength rules.
	ErrWeakPassword = errors.New("password must contain uppercase, lowercase, numbers, and special characters")
	// ErrUserNotFound is returned when a user lookup finds nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrBankNotFound is returned when a bank record lookup finds nothing.
	ErrBankNotFound = errors.New("bank not found")
	// ErrInvalidResetToken is returned for unknown or expired reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrInvalidVerificationToken is returned for unknown or expired email
	// verification tokens.
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
)

// LockoutError reports a temporarily locked identifier and how long remains.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d seconds", int(e.RetryAfter.Seconds()))
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized is
// an internal failure and carries no detail to the client.
func MapErrorToHTTP(err error) *HTTPError {
	var lockout *LockoutError
	if errors.As(err, &lockout) {
		return NewHTTPError(http.StatusTooManyRequests, lockout.Error(), "TOO_MANY_ATTEMPTS")
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountInactive):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrWeakPassword):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "WEAK_PASSWORD")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrBankNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "BANK_NOT_FOUND")
	case errors.Is(err, ErrInvalidResetToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RESET_TOKEN")
	case errors.Is(err, ErrInvalidVerificationToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_VERIFICATION_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "an error occurred, please try again later", "INTERNAL_ERROR")
	}
}
