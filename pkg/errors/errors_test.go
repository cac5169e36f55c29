package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrOutOfStock, ErrUnauthorized,
		ErrConflict, ErrServiceUnavail, ErrPaymentFailed, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("record store unreachable")
	appErr := &AppError{Code: "SERVICE_UNAVAILABLE", Message: "store down", Err: inner}
	assert.Contains(t, appErr.Error(), "SERVICE_UNAVAILABLE")
	assert.Contains(t, appErr.Error(), "store down")
	assert.Contains(t, appErr.Error(), "record store unreachable")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "order not found"}
	assert.Equal(t, "NOT_FOUND: order not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"NotFound", NotFound("reservation", "abc-123"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"InvalidInput", InvalidInput("quantity must be positive"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"OutOfStock", OutOfStock("only 2 sacks left"), "OUT_OF_STOCK", http.StatusBadRequest, ErrOutOfStock},
		{"Unauthorized", Unauthorized("login required"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"Conflict", Conflict("inventory changed"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"ServiceUnavailable", ServiceUnavailable("record store down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
		{"PaymentFailed", PaymentFailed("session creation failed"), "PAYMENT_FAILED", http.StatusInternalServerError, ErrPaymentFailed},
		{"PaymentNotCompleted", PaymentNotCompleted("payment still pending"), "PAYMENT_NOT_COMPLETED", http.StatusBadRequest, ErrPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestNotFound_MessageContainsResourceAndID(t *testing.T) {
	err := NotFound("order", "ord-42")
	assert.Contains(t, err.Message, "order")
	assert.Contains(t, err.Message, "ord-42")
}

func TestConfirmationFailed_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("stripe timeout")
	err := ConfirmationFailed(cause)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Internal(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	inner := ErrOutOfStock
	wrapped := Wrap(inner, "reserving stock")
	assert.True(t, errors.Is(wrapped, ErrOutOfStock))
	assert.Contains(t, wrapped.Error(), "reserving stock")
}

// --- HTTPStatus ---

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error wins", ServiceUnavailable("down"), http.StatusServiceUnavailable},
		{"wrapped app error", fmt.Errorf("context: %w", OutOfStock("empty")), http.StatusBadRequest},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel out of stock", ErrOutOfStock, http.StatusBadRequest},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel service unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", fmt.Errorf("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
