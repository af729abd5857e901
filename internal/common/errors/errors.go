// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrCodeInvalidState       ErrorCode = "INVALID_STATE"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	ErrCodeUnavailable        ErrorCode = "UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError reports a missing entity, e.g. NewNotFoundError("application", id).
func NewNotFoundError(entity, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", entity), fmt.Sprintf("%sId: %s", entity, id), false).
		WithMetadata("entity", entity).
		WithMetadata("id", id)
}

// NewForbiddenError reports a caller acting on something it does not own.
func NewForbiddenError(message, details string) *StandardError {
	return newError(ErrCodeForbidden, message, details, false)
}

// NewPreconditionFailedError reports a missing prerequisite such as a profile.
func NewPreconditionFailedError(message, details string) *StandardError {
	return newError(ErrCodePreconditionFailed, message, details, false)
}

// NewInvalidStateError reports a business rule violation or illegal transition.
func NewInvalidStateError(message, details string) *StandardError {
	return newError(ErrCodeInvalidState, message, details, false)
}

// NewTransitionError reports a from→to pair the transition table rejects.
func NewTransitionError(from, to string) *StandardError {
	return newError(ErrCodeInvalidState,
		fmt.Sprintf("invalid status transition from %s to %s", from, to),
		fmt.Sprintf("from: %s, to: %s", from, to), false).
		WithMetadata("from", from).
		WithMetadata("to", to)
}

// NewConflictError reports a duplicate that retrying will not fix.
func NewConflictError(message, details string) *StandardError {
	return newError(ErrCodeConflict, message, details, false)
}

// NewConcurrentUpdateError reports an optimistic lock failure. One retry is allowed.
func NewConcurrentUpdateError(entity, id string) *StandardError {
	return newError(ErrCodeConflict,
		fmt.Sprintf("%s was modified concurrently", entity),
		fmt.Sprintf("%sId: %s", entity, id), true).
		WithMetadata("entity", entity).
		WithMetadata("id", id)
}

// NewInvalidArgumentError reports malformed input.
func NewInvalidArgumentError(message, details string) *StandardError {
	return newError(ErrCodeInvalidArgument, message, details, false)
}

// NewUnavailableError wraps a storage or transport failure.
func NewUnavailableError(operation string, err error) *StandardError {
	details := fmt.Sprintf("operation: %s", operation)
	if err != nil {
		details = fmt.Sprintf("operation: %s, error: %s", operation, err.Error())
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		details = fmt.Sprintf("operation: %s, error: timeout exceeded", operation)
	}
	return newError(ErrCodeUnavailable, "Backing service unavailable", details, true).
		WithMetadata("operation", operation)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeInternal, "Unexpected error", details, false)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUnavailable, ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeConflict:
		return 1 // optimistic lock only, see RetryBudget
	default:
		return 0
	}
}

// RetryBudget is GetRetryCount gated by the error's own Retryable flag, so a
// duplicate-application CONFLICT is thrown while a lost version race is retried.
func RetryBudget(stdErr *StandardError) int {
	if stdErr == nil || !stdErr.Retryable {
		return 0
	}
	return GetRetryCount(stdErr.Code)
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are identical to internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        RetryBudget(stdErr),
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError if it holds one.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of a StandardError anywhere in err's chain, or
// INTERNAL_ERROR for anything else. A nil error has no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeForbidden, ErrCodePreconditionFailed:
		return "AUTHORIZATION"
	case ErrCodeInvalidState, ErrCodeConflict:
		return "BUSINESS_RULE"
	case ErrCodeInvalidArgument:
		return "VALIDATION"
	case ErrCodeNotFound:
		return "LOOKUP"
	case ErrCodeUnavailable:
		return "INFRASTRUCTURE"
	case ErrCodeNotificationSendFailed:
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
