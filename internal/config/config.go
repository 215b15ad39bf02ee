package config

// Config holds all application configuration. It is read-only after the
// orchestrator is constructed.
type Config struct {
	Debug      bool             `mapstructure:"debug"`
	Log        LogConfig        `mapstructure:"log"`
	Output     OutputConfig     `mapstructure:"output"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig configures result persistence.
type OutputConfig struct {
	Dir                     string `mapstructure:"dir"`
	SaveIntermediateResults bool   `mapstructure:"save_intermediate_results"`
}

// WorkflowConfig configures workflow execution.
type WorkflowConfig struct {
	// Timeout bounds each collaborator attempt, not the whole pipeline.
	Timeout        string `mapstructure:"timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
	HumanInTheLoop bool   `mapstructure:"human_in_the_loop"`
}

// RetryConfig configures the delay between collaborator retry attempts.
// The default strategy is "none": attempts repeat immediately.
type RetryConfig struct {
	Backoff    string  `mapstructure:"backoff"` // none, fixed, exponential
	BaseDelay  string  `mapstructure:"base_delay"`
	MaxDelay   string  `mapstructure:"max_delay"`
	Multiplier float64 `mapstructure:"multiplier"`
	Jitter     float64 `mapstructure:"jitter"`
}

// CheckpointConfig configures the checkpoint persistence backend.
type CheckpointConfig struct {
	Backend string `mapstructure:"backend"` // json, sqlite
}
