package services_test

import (
	"testing"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
)

func TestPollPolicyDelay(t *testing.T) {
	tests := []struct {
		name    string
		policy  services.PollPolicy
		attempt int
		want    time.Duration
	}{
		{name: "fixed interval", policy: services.DefaultPollPolicy(), attempt: 7, want: 2 * time.Second},
		{name: "first backoff step", policy: services.PollPolicy{Interval: time.Second, Multiplier: 2}, attempt: 1, want: time.Second},
		{name: "grows geometrically", policy: services.PollPolicy{Interval: time.Second, Multiplier: 2}, attempt: 4, want: 8 * time.Second},
		{name: "capped", policy: services.PollPolicy{Interval: time.Second, Multiplier: 2, MaxInterval: 5 * time.Second}, attempt: 4, want: 5 * time.Second},
		{name: "multiplier below one treated as fixed", policy: services.PollPolicy{Interval: time.Second, Multiplier: 0.5}, attempt: 3, want: time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Delay(tc.attempt); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDefaultPollPolicy(t *testing.T) {
	p := services.DefaultPollPolicy()
	if p.MaxAttempts != 10 || p.Interval != 2*time.Second || p.Multiplier != 1 || p.MaxInterval != 0 {
		t.Fatalf("unexpected default policy %+v", p)
	}
}
