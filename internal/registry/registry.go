// Package registry holds the name-to-collaborator lookup tables shared by
// all workflows. The registry is read-only after orchestrator setup.
package registry

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// Registry manages registered agents and tools.
type Registry struct {
	agents map[string]core.Agent
	tools  map[string]core.Tool
	logger *logging.Logger
	mu     sync.RWMutex
}

// New creates an empty registry.
func New(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		agents: make(map[string]core.Agent),
		tools:  make(map[string]core.Tool),
		logger: logger,
	}
}

// RegisterAgent stores an agent under name. Re-registration is allowed;
// the last registration wins and the overwrite is logged as a warning.
func (r *Registry) RegisterAgent(name string, agent core.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[name]; exists {
		r.logger.Warn("overwriting registered agent", "name", name)
	}
	r.agents[name] = agent
	r.logger.Debug("registered agent", "name", name)
}

// RegisterTool stores a tool under name, same overwrite policy as agents.
func (r *Registry) RegisterTool(name string, tool core.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("overwriting registered tool", "name", name)
	}
	r.tools[name] = tool
	r.logger.Debug("registered tool", "name", name)
}

// Agent returns the agent registered under name.
func (r *Registry) Agent(name string) (core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[name]
	if !ok {
		return nil, core.ErrNotFound("agent", name)
	}
	return agent, nil
}

// Tool returns the tool registered under name.
func (r *Registry) Tool(name string) (core.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, core.ErrNotFound("tool", name)
	}
	return tool, nil
}

// ListAgents returns registered agent names, sorted.
func (r *Registry) ListAgents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTools returns registered tool names, sorted.
func (r *Registry) ListTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PingAll checks availability of every collaborator that implements
// core.Pinger. Collaborators without a Ping method count as available.
func (r *Registry) PingAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	pingers := make(map[string]core.Pinger)
	for name, agent := range r.agents {
		if p, ok := agent.(core.Pinger); ok {
			pingers[name] = p
		}
	}
	for name, tool := range r.tools {
		if p, ok := tool.(core.Pinger); ok {
			pingers[name] = p
		}
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(pingers))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for name, p := range pingers {
		g.Go(func() error {
			err := p.Ping(ctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

var _ core.CollaboratorRegistry = (*Registry)(nil)
