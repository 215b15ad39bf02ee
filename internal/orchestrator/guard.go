package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// Guard wraps a single collaborator call with bounded retry and a
// per-attempt timeout, normalizing every outcome into a StageResult.
// Collaborator failures never surface as errors; the only error a Guard
// method returns is collaborator-not-found.
type Guard struct {
	registry   core.CollaboratorRegistry
	timeout    time.Duration
	maxRetries int
	backoff    *BackoffPolicy
	logger     *logging.Logger
}

// GuardConfig configures a Guard.
type GuardConfig struct {
	// Timeout bounds each attempt; exceeding it cancels the attempt and
	// counts as a failure.
	Timeout time.Duration

	// MaxRetries is the total attempt budget, at least 1.
	MaxRetries int

	// Backoff is the delay policy between attempts (immediate if nil).
	Backoff *BackoffPolicy
}

// NewGuard creates an execution guard over the registry.
func NewGuard(reg core.CollaboratorRegistry, cfg GuardConfig, logger *logging.Logger) *Guard {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Backoff == nil {
		cfg.Backoff = NoBackoff()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Guard{
		registry:   reg,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		logger:     logger,
	}
}

// RunAgent executes the named agent under the guard. The returned error
// is non-nil only when the agent is not registered.
func (g *Guard) RunAgent(ctx context.Context, rc *RunContext, name string, input map[string]any) (*core.StageResult, error) {
	agent, err := g.registry.Agent(name)
	if err != nil {
		return nil, err
	}
	result := g.run(ctx, rc, name, core.KindAgent, func(attemptCtx context.Context) (map[string]any, error) {
		return agent.Process(attemptCtx, input)
	})
	return result, nil
}

// RunTool executes the named tool under the guard. A tool payload of
// {status:"error"} counts as a failed attempt even though the tool
// returned no error.
func (g *Guard) RunTool(ctx context.Context, rc *RunContext, name string, args map[string]any) (*core.StageResult, error) {
	tool, err := g.registry.Tool(name)
	if err != nil {
		return nil, err
	}
	result := g.run(ctx, rc, name, core.KindTool, func(attemptCtx context.Context) (map[string]any, error) {
		return tool.Run(attemptCtx, args)
	})
	return result, nil
}

type attempt struct {
	payload map[string]any
	err     error
}

func (g *Guard) run(ctx context.Context, rc *RunContext, name string, kind core.CollaboratorKind, call func(context.Context) (map[string]any, error)) *core.StageResult {
	log := g.logger.WithCollaborator(name)
	if rc != nil {
		log = rc.Logger.WithCollaborator(name)
	}

	var lastFailure string
	for n := 1; n <= g.maxRetries; n++ {
		payload, err := g.invoke(ctx, call)
		if err == nil {
			if msg, failed := envelopeError(payload); failed {
				lastFailure = fmt.Sprintf("%s reported error: %s", kind, msg)
			} else {
				result := core.NewStageSuccess(name, kind, normalizePayload(payload), n)
				g.checkpoint(rc, name, result)
				return result
			}
		} else if errors.Is(err, context.DeadlineExceeded) {
			lastFailure = fmt.Sprintf("timed out after %s", g.timeout)
		} else if errors.Is(err, context.Canceled) {
			lastFailure = "canceled"
		} else {
			lastFailure = err.Error()
		}

		log.Warn("collaborator attempt failed",
			"attempt", n, "max_retries", g.maxRetries, "reason", lastFailure)

		// A canceled parent context will fail every remaining attempt;
		// stop early.
		if ctx.Err() != nil {
			break
		}
		if n < g.maxRetries {
			if err := g.backoff.Wait(ctx, n); err != nil {
				break
			}
		}
	}

	result := core.NewStageFailure(name, kind,
		fmt.Sprintf("%s failed after %d attempts: %s", name, g.maxRetries, lastFailure),
		g.maxRetries)
	g.checkpoint(rc, name, result)
	return result
}

// invoke runs one attempt bounded by the per-attempt timeout. The call
// runs in its own goroutine so a collaborator that ignores cancellation
// cannot stall the attempt past its deadline.
func (g *Guard) invoke(ctx context.Context, call func(context.Context) (map[string]any, error)) (map[string]any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ch := make(chan attempt, 1)
	go func() {
		payload, err := call(attemptCtx)
		ch <- attempt{payload: payload, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	case out := <-ch:
		return out.payload, out.err
	}
}

// checkpoint records the result keyed by {workflow}_{collaborator},
// success or failure alike, when a run is in progress.
func (g *Guard) checkpoint(rc *RunContext, name string, result *core.StageResult) {
	if rc == nil {
		return
	}
	rc.Checkpoint(fmt.Sprintf("%s_%s", rc.Workflow, name), result)
}

// envelopeError reports whether a returned payload declares failure via
// the status/message envelope convention.
func envelopeError(payload map[string]any) (string, bool) {
	status, ok := payload["status"].(string)
	if !ok || status != "error" {
		return "", false
	}
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg, true
	}
	return "unspecified error", true
}

// normalizePayload unwraps the data content of a status/message/data
// envelope; payloads without the envelope pass through untouched.
func normalizePayload(payload map[string]any) map[string]any {
	if _, ok := payload["status"].(string); !ok {
		return payload
	}
	if data, ok := payload["data"].(map[string]any); ok {
		return data
	}
	return payload
}
