package orchestrator

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/ideavet/ideavet/internal/config"
)

// BackoffStrategy names a delay policy between retry attempts.
type BackoffStrategy string

const (
	// BackoffNone repeats attempts immediately.
	BackoffNone BackoffStrategy = "none"

	// BackoffFixed waits BaseDelay between attempts.
	BackoffFixed BackoffStrategy = "fixed"

	// BackoffExponential waits BaseDelay * Multiplier^(attempt-1), capped
	// at MaxDelay.
	BackoffExponential BackoffStrategy = "exponential"
)

// BackoffPolicy computes the delay before a retry attempt.
type BackoffPolicy struct {
	Strategy     BackoffStrategy
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0 to 1.0
}

// NoBackoff returns the immediate-retry policy.
func NoBackoff() *BackoffPolicy {
	return &BackoffPolicy{Strategy: BackoffNone}
}

// PolicyFromConfig builds a policy from the retry configuration.
func PolicyFromConfig(cfg config.RetryConfig) *BackoffPolicy {
	return &BackoffPolicy{
		Strategy:     BackoffStrategy(cfg.Backoff),
		BaseDelay:    cfg.BaseDelayDuration(),
		MaxDelay:     cfg.MaxDelayDuration(),
		Multiplier:   cfg.Multiplier,
		JitterFactor: cfg.Jitter,
	}
}

// Delay computes the wait before retrying after the given 1-indexed
// failed attempt.
func (p *BackoffPolicy) Delay(attempt int) time.Duration {
	var delay float64
	switch p.Strategy {
	case BackoffFixed:
		delay = float64(p.BaseDelay)
	case BackoffExponential:
		delay = float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
		if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
			delay = float64(p.MaxDelay)
		}
	default:
		return 0
	}

	if p.JitterFactor > 0 {
		jitter := delay * p.JitterFactor
		delay += (rand.Float64()*2 - 1) * jitter
		if delay < 0 {
			delay = 0
		}
	}
	return time.Duration(delay)
}

// Wait blocks for the computed delay or until the context is done.
func (p *BackoffPolicy) Wait(ctx context.Context, attempt int) error {
	delay := p.Delay(attempt)
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
