// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"validation is terminal", NewValidationError("destination is required"), "VALIDATION_FAILED", 0},
		{"store failures retry", NewPlanStoreError("postgres", fmt.Errorf("conn reset")), "PLAN_STORE_FAILED", 3},
		{"transport retries twice", NewLLMTransportError(fmt.Errorf("502")), "LLM_TRANSPORT_ERROR", 2},
		{"timeout not retryable flag wins", NewLLMTimeoutError("20s"), "LLM_TIMEOUT", 0},
		{"generic content terminal", NewGenericContentError("lorem ipsum"), "GENERIC_CONTENT_DETECTED", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, b.Code)
			assert.Equal(t, tt.wantRetries, b.Retries)
			vars := b.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, tt.wantCode, vars["originalErrorCode"])
		})
	}
}

func TestStandardError_Metadata(t *testing.T) {
	err := NewValidationError("bad dates").WithMetadata("field", "endDate")
	b := ConvertToBPMNError(err)
	assert.Equal(t, "endDate", b.ErrorVariables["field"])
	assert.Contains(t, err.Error(), "bad dates")
}

func TestNormalize(t *testing.T) {
	std := NewValidationError("x")
	wrapped := fmt.Errorf("execute: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeGenericContentDetected))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodePlanStoreFailed))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeWeatherLookupFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodePlanStoreFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
}
