package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"

	// ErrCodeSessionUnavailable indicates no valid session exists. Always a
	// redirect to sign-in, never retried.
	ErrCodeSessionUnavailable ErrorCode = "session_unavailable"
	// ErrCodeRoleNotFound indicates an authenticated identity has no profile
	// or role. Terminal: treated as unauthorized, never defaulted.
	ErrCodeRoleNotFound ErrorCode = "role_not_found"
	// ErrCodeRoleUnavailable indicates a transient backend failure during
	// role lookup. Retried with bounded backoff before escalating.
	ErrCodeRoleUnavailable ErrorCode = "role_unavailable"
	// ErrCodeTokenExpired indicates a data call failed because the session
	// credential is invalid or expired. Handled centrally by the auth-error
	// interceptor, never locally by a guard.
	ErrCodeTokenExpired ErrorCode = "token_expired"
	// ErrCodeMisconfiguredRoute indicates a path matched no configured route
	// area. A programming error, not an authorization failure.
	ErrCodeMisconfiguredRoute ErrorCode = "misconfigured_route"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// ForeignKey creates a new ForeignKey error.
func ForeignKey(message string) *AppError {
	return &AppError{Code: ErrCodeForeignKey, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// SessionUnavailable creates an error for a missing or invalid session.
func SessionUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeSessionUnavailable, Message: message}
}

// RoleNotFound creates a terminal no-profile error for the given identity.
func RoleNotFound(userID string) *AppError {
	return &AppError{Code: ErrCodeRoleNotFound, Message: fmt.Sprintf("no profile for user %q", userID)}
}

// RoleUnavailable wraps a transient role-lookup failure.
func RoleUnavailable(err error) *AppError {
	return &AppError{Code: ErrCodeRoleUnavailable, Message: "role lookup unavailable", Cause: err}
}

// TokenExpired creates the credential-failure classification data calls must
// raise (not merely log) so the interceptor can act.
func TokenExpired(message string) *AppError {
	return &AppError{Code: ErrCodeTokenExpired, Message: message}
}

// MisconfiguredRoute creates a programming-error classification for a path
// with no configured route area.
func MisconfiguredRoute(path string) *AppError {
	return &AppError{Code: ErrCodeMisconfiguredRoute, Message: fmt.Sprintf("no route area configured for path %q", path)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsForeignKey checks if an error is a ForeignKey error.
func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// IsSessionUnavailable checks for the missing/invalid session classification.
func IsSessionUnavailable(err error) bool { return isCode(err, ErrCodeSessionUnavailable) }

// IsRoleNotFound checks for the terminal no-profile classification.
func IsRoleNotFound(err error) bool { return isCode(err, ErrCodeRoleNotFound) }

// IsRoleUnavailable checks for the retryable role-lookup classification.
func IsRoleUnavailable(err error) bool { return isCode(err, ErrCodeRoleUnavailable) }

// IsTokenExpired checks for the credential-failure classification.
func IsTokenExpired(err error) bool { return isCode(err, ErrCodeTokenExpired) }

// IsMisconfiguredRoute checks for the unmatched-route classification.
func IsMisconfiguredRoute(err error) bool { return isCode(err, ErrCodeMisconfiguredRoute) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
