package reliability

import (
	"context"
	"errors"
	"net"
	"time"
)

// IsRetryableHTTPStatus classifies retryable synthesis/generation HTTP
// status codes. Client validation errors (other 4xx) are never retried.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// IsRetryableNetworkError classifies transport-level failures worth
// retrying: timeouts, connection resets and other temporary conditions.
// Context cancellation is deliberate and never retried.
func IsRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// LinearBackoff computes the wait before the given retry attempt
// (0-based): no wait before the first attempt, then base, 2*base, ...
func LinearBackoff(attempt int, base time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(attempt) * base
}
