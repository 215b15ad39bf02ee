package core

import "context"

// Agent defines the contract for analysis agents. Process may block; it
// must honor context cancellation. A returned mapping either carries the
// status/message/data envelope or is treated as raw success content.
type Agent interface {
	// Name returns the collaborator identifier (e.g., "market_researcher").
	Name() string

	// Process runs the agent against the input and returns its result.
	Process(ctx context.Context, input map[string]any) (map[string]any, error)
}

// Tool defines the contract for supporting tools. Unlike agents, a tool
// that fails conventionally returns a {status:"error", message} payload
// instead of an error; the execution guard treats both as failures.
type Tool interface {
	// Name returns the collaborator identifier (e.g., "mvp_estimator").
	Name() string

	// Run invokes the tool with named arguments.
	Run(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Pinger is optionally implemented by collaborators that can report
// availability, used by the doctor command.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CollaboratorRegistry resolves agents and tools by name.
type CollaboratorRegistry interface {
	// RegisterAgent stores an agent under name. Re-registration is
	// allowed and logged as a warning; the last registration wins.
	RegisterAgent(name string, agent Agent)

	// RegisterTool stores a tool under name, same overwrite policy.
	RegisterTool(name string, tool Tool)

	// Agent returns the agent registered under name.
	Agent(name string) (Agent, error)

	// Tool returns the tool registered under name.
	Tool(name string) (Tool, error)

	// ListAgents returns registered agent names.
	ListAgents() []string

	// ListTools returns registered tool names.
	ListTools() []string
}

// CheckpointBackend persists checkpoints and report artifacts to durable
// storage. Persistence failures are warnings, never workflow errors.
type CheckpointBackend interface {
	// Save serializes value under the (sanitized) key.
	Save(key string, value any) error

	// SaveReport writes a final validation report artifact and returns
	// its path or identifier.
	SaveReport(ideaName string, report any) (string, error)

	// Close releases any held resources.
	Close() error
}

// FeedbackDecider produces an answer to a human feedback request.
// Implementations range from console prompts to fixed test answers.
type FeedbackDecider interface {
	Decide(ctx context.Context, message string, options []string) (string, error)
}
