package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ValidationError{Field: "price", Message: "negative"}, want: http.StatusBadRequest},
		{name: "not found", err: &NotFoundError{Resource: "reseller", ID: "RSL-X"}, want: http.StatusNotFound},
		{name: "conflict", err: &ConflictError{Message: "already approved"}, want: http.StatusConflict},
		{name: "duplicate", err: &DuplicateError{Key: "tx1"}, want: http.StatusConflict},
		{name: "gateway", err: &GatewayError{Message: "timeout", Unknown: true}, want: http.StatusBadGateway},
		{name: "wrapped", err: fmt.Errorf("handling webhook: %w", &NotFoundError{Resource: "product", ID: "p1"}), want: http.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestGatewayErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &GatewayError{Message: "request failed", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
