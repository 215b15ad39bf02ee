package orchestrator

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// RunContext carries the execution state of one workflow invocation: the
// workflow name, a unique run ID, and the in-run checkpoint mapping. A
// fresh RunContext is created per Execute call and discarded when it
// returns, so concurrent executions on one engine never share state.
type RunContext struct {
	Workflow string
	RunID    string
	Logger   *logging.Logger

	backend core.CheckpointBackend
	persist bool

	mu      sync.Mutex
	results map[string]any
}

// NewRunContext creates the execution context for a single run.
func NewRunContext(workflow string, backend core.CheckpointBackend, persist bool, logger *logging.Logger) *RunContext {
	if logger == nil {
		logger = logging.NewNop()
	}
	runID := uuid.NewString()
	return &RunContext{
		Workflow: workflow,
		RunID:    runID,
		Logger:   logger.WithWorkflow(workflow).WithRun(runID),
		backend:  backend,
		persist:  persist,
		results:  make(map[string]any),
	}
}

// Checkpoint records value under key in the in-run mapping and, when
// persistence is enabled, writes it to the backend. Persistence failures
// are logged as warnings and never escalate.
func (rc *RunContext) Checkpoint(key string, value any) {
	rc.mu.Lock()
	rc.results[key] = value
	rc.mu.Unlock()

	if !rc.persist || rc.backend == nil {
		return
	}
	if err := rc.backend.Save(key, value); err != nil {
		rc.Logger.Warn("failed to persist checkpoint", "key", key, "error", err)
	}
}

// Result reads a checkpointed value from the in-run mapping only; it
// never touches the persistence backend.
func (rc *RunContext) Result(key string) (any, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	value, ok := rc.results[key]
	return value, ok
}

// Results returns a copy of the in-run checkpoint mapping.
func (rc *RunContext) Results() map[string]any {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make(map[string]any, len(rc.results))
	for k, v := range rc.results {
		out[k] = v
	}
	return out
}

// SaveReport writes the final report artifact through the backend,
// independent of the intermediate-result setting. Returns the artifact
// path when persisted.
func (rc *RunContext) SaveReport(ideaName string, report any) (string, error) {
	if rc.backend == nil {
		return "", nil
	}
	return rc.backend.SaveReport(ideaName, report)
}
