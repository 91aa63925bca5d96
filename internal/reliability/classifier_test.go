package reliability

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = false, want true", code)
		}
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = true, want false", code)
		}
	}
}

func TestIsRetryableNetworkError(t *testing.T) {
	if IsRetryableNetworkError(nil) {
		t.Fatalf("IsRetryableNetworkError(nil) = true")
	}
	if IsRetryableNetworkError(context.Canceled) {
		t.Fatalf("IsRetryableNetworkError(context.Canceled) = true, want false")
	}
	if !IsRetryableNetworkError(&net.OpError{Op: "read", Err: errors.New("connection reset by peer")}) {
		t.Fatalf("IsRetryableNetworkError(net.OpError) = false, want true")
	}
	if IsRetryableNetworkError(errors.New("invalid payload")) {
		t.Fatalf("IsRetryableNetworkError(plain error) = true, want false")
	}
}

func TestLinearBackoff(t *testing.T) {
	base := 2 * time.Second
	if got := LinearBackoff(0, base); got != 0 {
		t.Fatalf("LinearBackoff(0) = %s, want 0", got)
	}
	if got := LinearBackoff(1, base); got != 2*time.Second {
		t.Fatalf("LinearBackoff(1) = %s, want 2s", got)
	}
	if got := LinearBackoff(2, base); got != 4*time.Second {
		t.Fatalf("LinearBackoff(2) = %s, want 4s", got)
	}
}
