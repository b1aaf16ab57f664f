package providers

import (
	"context"
	"errors"
	"fmt"
	"net"

	dErrors "farmgate/pkg/domain-errors"
)

// ErrorCategory defines the normalized failure taxonomy for vision and OTP vendors.
type ErrorCategory string

const (
	// ErrorTimeout indicates the vendor took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the vendor returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the vendor is unavailable (network error, 5xx)
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorContractMismatch indicates the vendor API changed shape
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorRateLimited indicates the vendor throttled us
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorCircuitOpen indicates the call was short-circuited locally
	ErrorCircuitOpen ErrorCategory = "circuit_open"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps vendor failures with normalized categorization
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.ProviderID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a new normalized provider error
func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited ||
		category == ErrorCircuitOpen

	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying later
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// ClassifyTransport maps a transport-level error from an HTTP or SDK call
// into a ProviderError.
func ClassifyTransport(providerID string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ErrorTimeout, providerID, "request timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewProviderError(ErrorTimeout, providerID, "request timed out", err)
	default:
		return NewProviderError(ErrorProviderOutage, providerID, "request failed", err)
	}
}

// ClassifyStatus maps a non-2xx HTTP status into a ProviderError.
func ClassifyStatus(providerID string, status int, body string) *ProviderError {
	msg := fmt.Sprintf("unexpected status %d", status)
	if body != "" {
		msg += ": " + body
	}
	switch {
	case status == 401 || status == 403:
		return NewProviderError(ErrorAuthentication, providerID, msg, nil)
	case status == 429:
		return NewProviderError(ErrorRateLimited, providerID, msg, nil)
	case status >= 500:
		return NewProviderError(ErrorProviderOutage, providerID, msg, nil)
	default:
		return NewProviderError(ErrorBadData, providerID, msg, nil)
	}
}

// AsVendorUnavailable translates any vendor failure into the domain error
// surfaced to callers. The message stays generic; the cause is kept for logs.
func AsVendorUnavailable(err error) error {
	return dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "identity verification service is temporarily unavailable, please try again")
}
