package reliability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type typedErr struct{ retryable bool }

func (e *typedErr) Error() string   { return "typed" }
func (e *typedErr) Retryable() bool { return e.retryable }

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped canceled", fmt.Errorf("synthesize: %w", context.Canceled), false},
		{"typed retryable", &typedErr{retryable: true}, true},
		{"typed permanent", &typedErr{retryable: false}, false},
		{"plain", errors.New("backend hiccup"), true},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: IsRetryable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should not be retryable", code)
		}
	}
}

func TestExponentialBackoffCaps(t *testing.T) {
	base := 100 * time.Millisecond
	cap := time.Second
	if d := ExponentialBackoff(0, base, cap); d != base {
		t.Fatalf("attempt 0 = %v, want %v", d, base)
	}
	if d := ExponentialBackoff(10, base, cap); d != cap {
		t.Fatalf("attempt 10 = %v, want cap %v", d, cap)
	}
}
