package service

import "errors"

type ErrorCategory string

const (
	CategoryValidation      ErrorCategory = "VALIDATION_ERROR"
	CategoryNotFound        ErrorCategory = "NOT_FOUND"
	CategoryForbidden       ErrorCategory = "FORBIDDEN"
	CategoryUnauthenticated ErrorCategory = "UNAUTHENTICATED"
	CategoryDuplicate       ErrorCategory = "DUPLICATE_CONSTRAINT"
)

// Error is a business error rendered by the handler. errors.Is matches on Code.
type Error struct {
	Category ErrorCategory
	Code     string
	Message  string
	Field    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) withField(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

const passwordRuleMessage = "Password must be at least 8 characters long."

var (
	ErrWeakPassword  = &Error{CategoryValidation, "INVALID_PASSWORD", passwordRuleMessage, "password"}
	ErrWrongPassword = &Error{CategoryValidation, "WRONG_PASSWORD", "Wrong password.", "old_password"}
	ErrInvalidField  = &Error{CategoryValidation, "INVALID_FIELD", "Invalid field.", ""}

	ErrUserNotFound = &Error{CategoryNotFound, "USER_NOT_FOUND", "User not found.", ""}

	ErrForbidden = &Error{CategoryForbidden, "FORBIDDEN", "You do not have permission to perform this action.", ""}

	ErrUnauthenticated     = &Error{CategoryUnauthenticated, "UNAUTHENTICATED", "Authentication credentials were not provided.", ""}
	ErrInvalidCredentials  = &Error{CategoryUnauthenticated, "INVALID_CREDENTIALS", "No active account found with the given credentials.", ""}
	ErrInvalidRefreshToken = &Error{CategoryUnauthenticated, "INVALID_REFRESH_TOKEN", "Token is invalid or expired.", "refresh"}

	ErrDuplicateEmail    = &Error{CategoryDuplicate, "DUPLICATE_EMAIL", "Email already in used.", "email"}
	ErrDuplicateUsername = &Error{CategoryDuplicate, "DUPLICATE_USERNAME", "Username already in used.", "username"}
)

// InvalidField reports a request field that failed validation.
func InvalidField(field, message string) *Error {
	return &Error{Category: CategoryValidation, Code: ErrInvalidField.Code, Message: message, Field: field}
}
