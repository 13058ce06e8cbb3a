// Package apperrors defines the error taxonomy shared by services and
// controllers. Controllers map these to HTTP statuses; everything else is
// treated as an internal error and surfaced as a generic failure.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError reports a referenced reseller, product, transaction or
// payment that does not resolve to an existing record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ConflictError reports an invalid state transition, e.g. approving an
// already-approved payment.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// GatewayError reports a failed or timed-out payment processor call. Unknown
// is set when the outcome could not be determined (timeout after the request
// was sent), which callers must never treat as success.
type GatewayError struct {
	Message string
	Unknown bool
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Message, e.Err)
	}
	return "gateway: " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// DuplicateError reports a reconciliation uniqueness violation, raised when
// a second payment insert for the same transaction hits the unique index.
type DuplicateError struct {
	Key string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record for key %q", e.Key)
}

// HTTPStatus maps a taxonomy error to the status code controllers respond
// with. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *ConflictError
		ge *GatewayError
		de *DuplicateError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &de):
		return http.StatusConflict
	case errors.As(err, &ge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
