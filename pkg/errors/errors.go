// Package errors provides structured error handling for the application
package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Business logic errors
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists   ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeAccountDeactivated   ErrorCode = "ACCOUNT_DEACTIVATED"
	CodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	CodeEmptyQuestion        ErrorCode = "EMPTY_QUESTION"
	CodeUploadTooLarge       ErrorCode = "UPLOAD_TOO_LARGE"
	CodeUploadUnsupported    ErrorCode = "UPLOAD_UNSUPPORTED"
	CodeUploadUnreadable     ErrorCode = "UPLOAD_UNREADABLE"
	CodeAdvisorUnavailable   ErrorCode = "ADVISOR_UNAVAILABLE"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeEmptyQuestion, CodeUploadUnsupported, CodeUploadUnreadable:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAccountDeactivated:
		return http.StatusForbidden
	case CodeNotFound, CodeUserNotFound, CodeConversationNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeEmailAlreadyExists:
		return http.StatusConflict
	case CodeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeAdvisorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(
		CodeDatabaseError,
		"Database operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		"External service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause)
}

// Business domain specific errors

// NewUserNotFoundError creates a user not found error
func NewUserNotFoundError(userID string) *AppError {
	return NewAppError(
		CodeUserNotFound,
		"User not found",
		fmt.Sprintf("User with ID %s does not exist", userID),
	).WithMetadata("user_id", userID)
}

// NewInvalidCredentialsError creates an invalid credentials error
func NewInvalidCredentialsError() *AppError {
	return NewAppError(
		CodeInvalidCredentials,
		"Invalid credentials",
		"The email or password provided is incorrect",
	)
}

// NewEmailAlreadyExistsError creates an email already exists error
func NewEmailAlreadyExistsError(email string) *AppError {
	return NewAppError(
		CodeEmailAlreadyExists,
		"Email already exists",
		"An account with this email address already exists",
	).WithMetadata("email", email)
}

// NewAccountDeactivatedError creates an account deactivated error
func NewAccountDeactivatedError() *AppError {
	return NewAppError(
		CodeAccountDeactivated,
		"Account deactivated",
		"This account has been deactivated",
	)
}

// NewConversationNotFoundError creates a conversation not found error
func NewConversationNotFoundError(conversationID string) *AppError {
	return NewAppError(
		CodeConversationNotFound,
		"Conversation not found",
		fmt.Sprintf("Conversation with ID %s does not exist", conversationID),
	).WithMetadata("conversation_id", conversationID)
}

// NewEmptyQuestionError creates an empty question error
func NewEmptyQuestionError() *AppError {
	return NewAppError(
		CodeEmptyQuestion,
		"Empty question",
		"Please enter a fitness question before submitting",
	)
}

// NewUploadTooLargeError creates an upload too large error
func NewUploadTooLargeError(maxBytes int64) *AppError {
	return NewAppError(
		CodeUploadTooLarge,
		"Uploaded file too large",
		fmt.Sprintf("Uploaded files may not exceed %d bytes", maxBytes),
	).WithMetadata("max_bytes", maxBytes)
}

// NewUploadUnsupportedError creates an unsupported upload type error
func NewUploadUnsupportedError(filename string) *AppError {
	return NewAppError(
		CodeUploadUnsupported,
		"Unsupported file type",
		fmt.Sprintf("File %q is not a supported upload type", filename),
	).WithMetadata("filename", filename)
}

// NewUploadUnreadableError creates an unreadable upload error
func NewUploadUnreadableError(cause error) *AppError {
	return NewAppError(
		CodeUploadUnreadable,
		"Unreadable file",
		"The uploaded file could not be parsed",
	).WithCause(cause)
}

// NewAdvisorUnavailableError creates an advisor unavailable error
func NewAdvisorUnavailableError(cause error) *AppError {
	return NewAppError(
		CodeAdvisorUnavailable,
		"Advisor unavailable",
		"The fitness advisor could not be reached",
	).WithCause(cause)
}

// IsCode reports whether err is an AppError with the given code
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	// Skip the first few frames of the errors package itself
	if len(lines) > 5 {
		lines = lines[5:]
	}
	return strings.Join(lines, "\n")
}
