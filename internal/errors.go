package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeRateLimited       ErrorType = "RATE_LIMITED"
	ErrorTypeInvalidTransition ErrorType = "INVALID_STATE_TRANSITION"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
	ErrorTypeRemote            ErrorType = "REMOTE_ERROR"
	ErrorTypeNetwork           ErrorType = "NETWORK_ERROR"
	ErrorTypeNetworkTimeout    ErrorType = "NETWORK_TIMEOUT"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequired         ErrorCode = "REQUIRED"
	ErrCodeInvalidValue     ErrorCode = "INVALID_VALUE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidHours     ErrorCode = "INVALID_HOURS"
	ErrCodeInvalidTarget    ErrorCode = "INVALID_TARGET"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"

	ErrCodeTimesheetNotFound  ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeProjectNotFound    ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeAssignmentNotFound ErrorCode = "ASSIGNMENT_NOT_FOUND"

	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeNotAssigned        ErrorCode = "NOT_ASSIGNED"
	ErrCodeDuplicate          ErrorCode = "DUPLICATE"
	ErrCodeInUse              ErrorCode = "IN_USE"
	ErrCodeStaleConfirmation  ErrorCode = "STALE_CONFIRMATION"

	ErrCodeNotPending           ErrorCode = "NOT_PENDING"
	ErrCodeConcurrentTransition ErrorCode = "CONCURRENT_TRANSITION"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	ErrCodeConfirmationNotFound ErrorCode = "CONFIRMATION_NOT_FOUND"

	ErrCodeRemoteFailure    ErrorCode = "REMOTE_FAILURE"
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeTransport        ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that sentinel comparisons survive wrapping
// and re-creation on the far side of the wire.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

// Retryable reports whether repeating the failed call may succeed.
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeNetworkTimeout || e.Type == ErrorTypeNetwork
}

// FieldError returns the first failing field of a validation error.
func (e *AppError) FieldError() (ValidationError, bool) {
	if v, ok := e.Details.(ValidationErrors); ok && len(v.Errors) > 0 {
		return v.Errors[0], true
	}
	return ValidationError{}, false
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidTransitionError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewRemoteError describes a non-2xx or malformed reply from the backend.
// status is the HTTP status the backend answered with.
func NewRemoteError(message string, status int) *AppError {
	if message == "" {
		message = "The server could not complete the request"
	}
	return &AppError{
		Type:       ErrorTypeRemote,
		Code:       ErrCodeRemoteFailure,
		Message:    message,
		StatusCode: status,
	}
}

func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Code:       ErrCodeTransport,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewNetworkTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetworkTimeout,
		Code:       ErrCodeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

var (
	ErrTimesheetNotFound  = NewNotFoundError("Timesheet entry not found", ErrCodeTimesheetNotFound)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrProjectNotFound    = NewNotFoundError("Project not found", ErrCodeProjectNotFound)
	ErrAssignmentNotFound = NewNotFoundError("Assignment not found", ErrCodeAssignmentNotFound)

	ErrUnauthorizedAccess = NewForbiddenError("You are not allowed to perform this action", ErrCodeUnauthorizedAccess)
	ErrNotPending         = NewInvalidTransitionError("Timesheet entry is no longer pending", ErrCodeNotPending)
	ErrConcurrentChange   = NewInvalidTransitionError("Timesheet entry was actioned by another session", ErrCodeConcurrentTransition)
	ErrDuplicateAssign    = NewConflictError("User is already assigned to this project", ErrCodeDuplicate)
	ErrStaleConfirmation  = NewConflictError("The target changed after the confirmation was proposed", ErrCodeStaleConfirmation)
	ErrConfirmationGone   = NewNotFoundError("Confirmation not found or expired", ErrCodeConfirmationNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrRateLimited        = &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeRateLimited,
		Message:    "Too many attempts, try again shortly",
		StatusCode: http.StatusTooManyRequests,
	}
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasType reports whether err is an AppError of type t.
func HasType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{Success: false, Message: e.GetDetailedMessage(), Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
