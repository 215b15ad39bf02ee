package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// Procedure is the body of a registered workflow. It receives a fresh
// run context and the raw invocation input, and returns the workflow's
// result value or an error.
type Procedure func(ctx context.Context, rc *RunContext, input map[string]any) (any, error)

// Engine dispatches workflow invocations by name. The engine itself is
// stateless across runs: every Execute call builds its own RunContext,
// so concurrent executions never interfere.
type Engine struct {
	backend core.CheckpointBackend
	persist bool
	logger  *logging.Logger

	mu         sync.RWMutex
	procedures map[string]Procedure
}

// NewEngine creates an engine persisting checkpoints through the backend
// when persist is true.
func NewEngine(backend core.CheckpointBackend, persist bool, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		backend:    backend,
		persist:    persist,
		logger:     logger,
		procedures: make(map[string]Procedure),
	}
}

// RegisterWorkflow binds a procedure to a workflow name. Re-registration
// overwrites with a warning, same as the collaborator registry.
func (e *Engine) RegisterWorkflow(name string, proc Procedure) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.procedures[name]; exists {
		e.logger.Warn("workflow already registered, overwriting", "workflow", name)
	}
	e.procedures[name] = proc
	e.logger.Debug("workflow registered", "workflow", name)
}

// Workflows returns the registered workflow names, sorted.
func (e *Engine) Workflows() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.procedures))
	for name := range e.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named workflow against the input. The result is
// checkpointed under "final_result" before returning. An unknown name
// yields a not-found error without creating a run.
func (e *Engine) Execute(ctx context.Context, name string, input map[string]any) (any, error) {
	e.mu.RLock()
	proc, ok := e.procedures[name]
	e.mu.RUnlock()
	if !ok {
		return nil, core.ErrNotFound("workflow", name)
	}

	rc := NewRunContext(name, e.backend, e.persist, e.logger)
	rc.Logger.Info("workflow started")

	result, err := proc(ctx, rc, input)
	if err != nil {
		rc.Logger.Error("workflow failed", "error", err)
		return nil, err
	}

	rc.Checkpoint("final_result", result)
	rc.Logger.Info("workflow completed")
	return result, nil
}
