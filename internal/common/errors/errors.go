// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeLLMTimeout             ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMTransportError      ErrorCode = "LLM_TRANSPORT_ERROR"
	ErrCodeLLMEmptyResponse       ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrCodeGenericContentDetected ErrorCode = "GENERIC_CONTENT_DETECTED"
	ErrCodeFallbackExhausted      ErrorCode = "FALLBACK_EXHAUSTED"

	ErrCodePlanStoreFailed     ErrorCode = "PLAN_STORE_FAILED"
	ErrCodeWeatherLookupFailed ErrorCode = "WEATHER_LOOKUP_FAILED"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout             ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
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
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns the error with an extra metadata entry.
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

// NewValidationError rejects a request before it reaches the planner.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Trip request validation failed", details, false)
}

func NewLLMTimeoutError(details string) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM call exceeded its deadline", details, false)
}

func NewLLMTransportError(err error) *StandardError {
	return newError(ErrCodeLLMTransportError, "LLM transport failure", err.Error(), true)
}

func NewLLMEmptyResponseError() *StandardError {
	return newError(ErrCodeLLMEmptyResponse, "LLM returned an empty document", "", false)
}

func NewGenericContentError(phrase string) *StandardError {
	return newError(ErrCodeGenericContentDetected, "Generated document contains generic placeholder content",
		fmt.Sprintf("matched phrase: %q", phrase), false)
}

// NewPlanStoreError wraps a failed write to a plan store backend.
func NewPlanStoreError(backend string, err error) *StandardError {
	return newError(ErrCodePlanStoreFailed, "Plan record could not be stored",
		fmt.Sprintf("backend: %s, error: %s", backend, err.Error()), true)
}

func NewWeatherLookupError(err error) *StandardError {
	return newError(ErrCodeWeatherLookupFailed, "Weather lookup failed", err.Error(), false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePlanStoreFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeTimeout,
		ErrCodeLLMTransportError:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

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
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "LLM") || strings.Contains(codeStr, "GENERIC") || strings.Contains(codeStr, "FALLBACK"):
		return "GENERATION"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "WEATHER") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "UPSTREAM"
	default:
		return "OTHER"
	}
}
