package services

import (
	"context"
	"math"
	"time"
)

// PollPolicy bounds how long AwaitStatus keeps asking for a payment status.
// With Multiplier above 1 the delay grows geometrically up to MaxInterval.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Multiplier  float64
	MaxInterval time.Duration
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		MaxAttempts: 10,
		Interval:    2 * time.Second,
		Multiplier:  1,
	}
}

func (p PollPolicy) normalized() PollPolicy {
	def := DefaultPollPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Interval < 0 {
		p.Interval = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// Delay is the wait after the given 1-based attempt, before the next one.
func (p PollPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.Interval) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxInterval > 0 && d > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
