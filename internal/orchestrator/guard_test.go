package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
	"github.com/ideavet/ideavet/internal/registry"
)

// stubAgent runs an arbitrary function as an agent.
type stubAgent struct {
	name string
	fn   func(ctx context.Context, input map[string]any) (map[string]any, error)
}

func (a *stubAgent) Name() string { return a.name }
func (a *stubAgent) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	return a.fn(ctx, input)
}

// stubTool runs an arbitrary function as a tool.
type stubTool struct {
	name string
	fn   func(ctx context.Context, args map[string]any) (map[string]any, error)
}

func (t *stubTool) Name() string { return t.name }
func (t *stubTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	return t.fn(ctx, args)
}

// memBackend records checkpoints and reports in memory.
type memBackend struct {
	mu      sync.Mutex
	saves   map[string]any
	reports []any
	saveErr error
}

func newMemBackend() *memBackend {
	return &memBackend{saves: make(map[string]any)}
}

func (b *memBackend) Save(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves[key] = value
	return nil
}

func (b *memBackend) SaveReport(_ string, report any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append(b.reports, report)
	return fmt.Sprintf("mem://report/%d", len(b.reports)), nil
}

func (b *memBackend) Close() error { return nil }

func (b *memBackend) saved(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.saves[key]
	return v, ok
}

func newTestGuard(t *testing.T, reg *registry.Registry, cfg GuardConfig) *Guard {
	t.Helper()
	return NewGuard(reg, cfg, logging.NewNop())
}

func newTestRun(workflow string, backend core.CheckpointBackend) *RunContext {
	return NewRunContext(workflow, backend, true, logging.NewNop())
}

func TestGuard_RunAgent_SuccessFirstAttempt(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	reg.RegisterAgent("echo", &stubAgent{name: "echo", fn: func(_ context.Context, input map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"ok": true}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 3})
	rc := newTestRun("wf", newMemBackend())

	res, err := guard.RunAgent(context.Background(), rc, "echo", nil)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"ok": true}, res.Payload)
}

func TestGuard_RunAgent_RetriesUntilSuccess(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	reg.RegisterAgent("flaky", &stubAgent{name: "flaky", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return map[string]any{"ok": true}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 3})
	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "flaky", nil)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, calls)
}

func TestGuard_RunAgent_ExhaustsRetries(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	reg.RegisterAgent("broken", &stubAgent{name: "broken", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		calls++
		return nil, errors.New("boom")
	}})

	backend := newMemBackend()
	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 3})
	rc := newTestRun("wf", backend)

	res, err := guard.RunAgent(context.Background(), rc, "broken", nil)
	require.NoError(t, err, "collaborator failure must not surface as an error")
	assert.False(t, res.Succeeded)
	assert.Equal(t, 3, calls, "attempt budget is MaxRetries")
	assert.Contains(t, res.Err, "failed after 3 attempts")
	assert.Contains(t, res.Err, "boom")

	// Failure is still checkpointed under {workflow}_{collaborator}.
	_, ok := backend.saved("wf_broken")
	assert.True(t, ok)
	_, ok = rc.Result("wf_broken")
	assert.True(t, ok)
}

func TestGuard_RunAgent_TimeoutPerAttempt(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	reg.RegisterAgent("slow", &stubAgent{name: "slow", fn: func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		calls++
		select {
		case <-time.After(time.Second):
			return map[string]any{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: 10 * time.Millisecond, MaxRetries: 2})
	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "slow", nil)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, 2, calls)
	assert.Contains(t, res.Err, "timed out after")
}

func TestGuard_RunAgent_TimeoutEvenIfCollaboratorIgnoresContext(t *testing.T) {
	reg := registry.New(logging.NewNop())
	reg.RegisterAgent("stubborn", &stubAgent{name: "stubborn", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		time.Sleep(500 * time.Millisecond) // ignores cancellation
		return map[string]any{}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: 10 * time.Millisecond, MaxRetries: 1})
	start := time.Now()
	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "stubborn", nil)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "attempt must not wait out the stalled collaborator")
}

func TestGuard_RunAgent_ParentCancelStopsRetrying(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	reg.RegisterAgent("cancelme", &stubAgent{name: "cancelme", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		calls++
		cancel()
		return nil, errors.New("failing while parent dies")
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 5})
	res, err := guard.RunAgent(ctx, newTestRun("wf", newMemBackend()), "cancelme", nil)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, 1, calls, "no further attempts after parent cancellation")
}

func TestGuard_RunAgent_NotFound(t *testing.T) {
	reg := registry.New(logging.NewNop())
	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 1})

	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "ghost", nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestGuard_RunAgent_ErrorEnvelopeIsFailure(t *testing.T) {
	reg := registry.New(logging.NewNop())
	reg.RegisterAgent("enveloped", &stubAgent{name: "enveloped", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return map[string]any{"status": "error", "message": "no startup idea provided"}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 2})
	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "enveloped", nil)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Contains(t, res.Err, "no startup idea provided")
}

func TestGuard_RunAgent_EnvelopeDataUnwrapped(t *testing.T) {
	reg := registry.New(logging.NewNop())
	reg.RegisterAgent("wrapped", &stubAgent{name: "wrapped", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return map[string]any{
			"status":  "success",
			"message": "done",
			"data":    map[string]any{"market_trends": map[string]any{"growth_rate": 25.0}},
		}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 1})
	res, err := guard.RunAgent(context.Background(), newTestRun("wf", newMemBackend()), "wrapped", nil)
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	_, hasStatus := res.Payload["status"]
	assert.False(t, hasStatus, "envelope must be stripped")
	assert.Contains(t, res.Payload, "market_trends")
}

func TestGuard_RunTool_ErrorPayloadRetriesAndFails(t *testing.T) {
	reg := registry.New(logging.NewNop())
	calls := 0
	reg.RegisterTool("estimator", &stubTool{name: "estimator", fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"status": "error", "message": "no features provided"}, nil
	}})

	guard := newTestGuard(t, reg, GuardConfig{Timeout: time.Second, MaxRetries: 2})
	res, err := guard.RunTool(context.Background(), newTestRun("wf", newMemBackend()), "estimator", nil)
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, 2, calls)
	assert.Contains(t, res.Err, "no features provided")
}
