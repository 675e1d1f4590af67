package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidPagination = errors.New("limit and offset must be non-negative integers")

	ErrInvoiceNotFound    = errors.New("invoice does not exist")
	ErrInvoiceAlreadyPaid = errors.New("invoice already paid")
)

// UpstreamError is returned when a call to the payment gateway or the
// messaging platform fails. Err is set for transport failures (including
// timeouts), StatusCode for non-2xx responses, and Message alone for
// application errors reported by the remote API.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s HTTP error: %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
