package config

import (
	"fmt"
	"strings"
	"time"
)

// FieldError describes a single invalid configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all configuration problems.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks configuration invariants. It returns a
// *ValidationError listing every violation, or nil.
func Validate(cfg *Config) error {
	var fields []FieldError

	add := func(field, message string) {
		fields = append(fields, FieldError{Field: field, Message: message})
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level))
	}

	switch cfg.Log.Format {
	case "auto", "text", "json":
	default:
		add("log.format", fmt.Sprintf("unknown format %q", cfg.Log.Format))
	}

	if cfg.Output.Dir == "" {
		add("output.dir", "cannot be empty")
	}

	if cfg.Workflow.MaxRetries < 1 {
		add("workflow.max_retries", "must be at least 1")
	}
	if d, err := time.ParseDuration(cfg.Workflow.Timeout); err != nil {
		add("workflow.timeout", fmt.Sprintf("invalid duration %q", cfg.Workflow.Timeout))
	} else if d <= 0 {
		add("workflow.timeout", "must be positive")
	}

	switch cfg.Retry.Backoff {
	case "none", "fixed", "exponential":
	default:
		add("retry.backoff", fmt.Sprintf("unknown strategy %q", cfg.Retry.Backoff))
	}
	if _, err := time.ParseDuration(cfg.Retry.BaseDelay); err != nil {
		add("retry.base_delay", fmt.Sprintf("invalid duration %q", cfg.Retry.BaseDelay))
	}
	if _, err := time.ParseDuration(cfg.Retry.MaxDelay); err != nil {
		add("retry.max_delay", fmt.Sprintf("invalid duration %q", cfg.Retry.MaxDelay))
	}
	if cfg.Retry.Jitter < 0 || cfg.Retry.Jitter > 1 {
		add("retry.jitter", "must be between 0 and 1")
	}

	switch cfg.Checkpoint.Backend {
	case "json", "sqlite":
	default:
		add("checkpoint.backend", fmt.Sprintf("unknown backend %q", cfg.Checkpoint.Backend))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TimeoutDuration returns the per-attempt timeout as a duration.
// Validate must have accepted the config first.
func (c WorkflowConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// BaseDelayDuration returns the parsed base delay.
func (c RetryConfig) BaseDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.BaseDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// MaxDelayDuration returns the parsed delay cap.
func (c RetryConfig) MaxDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.MaxDelay)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
