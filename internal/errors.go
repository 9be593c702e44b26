package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDateRange ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidLeaveType ErrorCode = "INVALID_LEAVE_TYPE"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeBranchNotFound    ErrorCode = "BRANCH_NOT_FOUND"
	ErrCodeRecordNotFound    ErrorCode = "ATTENDANCE_RECORD_NOT_FOUND"
	ErrCodeLeaveNotFound     ErrorCode = "LEAVE_APPLICATION_NOT_FOUND"
	ErrCodeDuplicateBranch   ErrorCode = "DUPLICATE_BRANCH_NAME"
	ErrCodeDuplicateEmployee ErrorCode = "DUPLICATE_EMPLOYEE_ID"

	ErrCodeInvalidQRToken   ErrorCode = "INVALID_QR_TOKEN"
	ErrCodeQRTokenExpired   ErrorCode = "QR_TOKEN_EXPIRED"
	ErrCodeUnknownIdentity  ErrorCode = "UNKNOWN_IDENTITY"
	ErrCodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED_TODAY"
	ErrCodeNoOpenRecord     ErrorCode = "NO_OPEN_RECORD"
	ErrCodeCheckoutCutoff   ErrorCode = "CHECKOUT_CUTOFF_PASSED"

	ErrCodeCorrectionNotEligible ErrorCode = "CORRECTION_NOT_ELIGIBLE"
	ErrCodeDuplicateCorrection   ErrorCode = "DUPLICATE_CORRECTION_REQUEST"

	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeLeaveOverlap      ErrorCode = "LEAVE_OVERLAP"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked       ErrorCode = "TOKEN_REVOKED"
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
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
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

var (
	ErrUserNotFound    = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrBranchNotFound  = NewNotFoundError("Branch not found", ErrCodeBranchNotFound)
	ErrRecordNotFound  = NewNotFoundError("Attendance record not found", ErrCodeRecordNotFound)
	ErrLeaveNotFound   = NewNotFoundError("Leave application not found", ErrCodeLeaveNotFound)
	ErrUnknownIdentity = NewNotFoundError("Referenced employee no longer exists", ErrCodeUnknownIdentity)

	ErrInvalidQRToken = NewValidationError("QR token is malformed", ErrCodeInvalidQRToken)
	ErrQRTokenExpired = NewValidationError("QR token has expired", ErrCodeQRTokenExpired)

	ErrAlreadyCompletedToday = NewConflictError("Attendance already completed for today", ErrCodeAlreadyCompleted)
	ErrNoOpenRecord          = NewValidationError("No active check-in record found for today", ErrCodeNoOpenRecord)
	ErrCheckoutCutoff        = NewValidationError("Cannot checkout after the cutoff time, submit a correction request", ErrCodeCheckoutCutoff)

	ErrCorrectionNotEligible = NewValidationError("Corrections apply only to past records that missed checkout", ErrCodeCorrectionNotEligible)
	ErrDuplicateCorrection   = NewConflictError("A pending correction already exists for this record", ErrCodeDuplicateCorrection)

	ErrInvalidTransition = NewValidationError("Application is not pending", ErrCodeInvalidTransition)
	ErrLeaveOverlap      = NewConflictError("A leave application already covers this period", ErrCodeLeaveOverlap)

	ErrDuplicateBranch   = NewConflictError("Branch name already exists", ErrCodeDuplicateBranch)
	ErrDuplicateEmployee = NewConflictError("Employee ID or email already exists", ErrCodeDuplicateEmployee)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid employee ID or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrTokenRevoked       = NewUnauthorizedError("Token has been revoked", ErrCodeTokenRevoked)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
