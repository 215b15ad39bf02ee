package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ideavet/ideavet/internal/config"
)

func TestBackoffPolicy_NoneIsImmediate(t *testing.T) {
	p := NoBackoff()
	for attempt := 1; attempt <= 5; attempt++ {
		assert.Equal(t, time.Duration(0), p.Delay(attempt))
	}
}

func TestBackoffPolicy_Fixed(t *testing.T) {
	p := &BackoffPolicy{Strategy: BackoffFixed, BaseDelay: 250 * time.Millisecond}
	assert.Equal(t, 250*time.Millisecond, p.Delay(1))
	assert.Equal(t, 250*time.Millisecond, p.Delay(4))
}

func TestBackoffPolicy_ExponentialGrowsAndCaps(t *testing.T) {
	p := &BackoffPolicy{
		Strategy:   BackoffExponential,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, time.Second, p.Delay(10), "delay capped at MaxDelay")
}

func TestBackoffPolicy_JitterBounds(t *testing.T) {
	p := &BackoffPolicy{
		Strategy:     BackoffFixed,
		BaseDelay:    100 * time.Millisecond,
		JitterFactor: 0.5,
	}
	for i := 0; i < 100; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestBackoffPolicy_WaitHonorsContext(t *testing.T) {
	p := &BackoffPolicy{Strategy: BackoffFixed, BaseDelay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Wait(ctx, 1)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.RetryConfig{
		Backoff:    "exponential",
		BaseDelay:  "2s",
		MaxDelay:   "10s",
		Multiplier: 3.0,
		Jitter:     0.1,
	})
	assert.Equal(t, BackoffExponential, p.Strategy)
	assert.Equal(t, 2*time.Second, p.BaseDelay)
	assert.Equal(t, 10*time.Second, p.MaxDelay)
	assert.Equal(t, 3.0, p.Multiplier)
	assert.Equal(t, 0.1, p.JitterFactor)
}
