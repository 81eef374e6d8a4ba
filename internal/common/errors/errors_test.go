package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_CodesAndRetryability(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
		status    int
	}{
		{"invalid input", NewInvalidInputError("hospital_beds", "must be positive"), ErrCodeInvalidInput, false, http.StatusBadRequest},
		{"reference data", NewReferenceDataUnavailableError("static", fmt.Errorf("boom")), ErrCodeReferenceDataUnavailable, true, http.StatusServiceUnavailable},
		{"delivery", NewDeliveryFailedError("clay", fmt.Errorf("503")), ErrCodeDeliveryFailed, true, http.StatusBadGateway},
		{"not found", NewReportNotFoundError("abc"), ErrCodeReportNotFound, false, http.StatusNotFound},
		{"store", NewReportStoreFailedError("insert", fmt.Errorf("conn reset")), ErrCodeReportStoreFailed, true, http.StatusServiceUnavailable},
		{"timeout", NewTimeoutError("cms", context.DeadlineExceeded), ErrCodeTimeout, true, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.status, HTTPStatus(tt.err.Code))
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestAsStandardError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStandardError(nil))
	})

	t.Run("wrapped standard error is found", func(t *testing.T) {
		inner := NewInvalidInputError("state", "bad")
		wrapped := fmt.Errorf("compute: %w", inner)
		assert.Same(t, inner, AsStandardError(wrapped))
		assert.True(t, HasCode(wrapped, ErrCodeInvalidInput))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		stdErr := AsStandardError(fmt.Errorf("plain"))
		assert.Equal(t, ErrCodeInternal, stdErr.Code)
		assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeInternal))
	})
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewReferenceDataUnavailableError("live", cause)
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable code keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewReferenceDataUnavailableError("live", fmt.Errorf("x")))
		assert.Equal(t, "REFERENCE_DATA_UNAVAILABLE", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "REFERENCE_DATA_UNAVAILABLE", vars["originalErrorCode"])
		assert.Equal(t, true, vars["retryable"])
	})

	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidInputError("hospital_beds", "zero"))
		assert.Equal(t, 0, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInternalError(fmt.Errorf("x")))
		assert.Equal(t, "INTERNAL_ERROR", bpmn.Code)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "REFERENCE_DATA", GetErrorCategory(ErrCodeReferenceDataUnavailable))
	assert.Equal(t, "REFERENCE_DATA", GetErrorCategory(ErrCodeHospitalLookupFailed))
	assert.Equal(t, "DELIVERY", GetErrorCategory(ErrCodeDeliveryFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeReportNotFound))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestWithMetadata(t *testing.T) {
	err := NewReportNotFoundError("r-1").WithMetadata("path", "/reports/r-1")
	require.NotNil(t, err.Metadata)
	assert.Equal(t, "/reports/r-1", err.Metadata["path"])
	assert.Contains(t, err.Error(), "REPORT_NOT_FOUND")
}
