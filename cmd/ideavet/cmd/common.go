package cmd

import (
	"fmt"

	"github.com/ideavet/ideavet/internal/adapters/agents"
	"github.com/ideavet/ideavet/internal/adapters/tools"
	"github.com/ideavet/ideavet/internal/checkpoint"
	"github.com/ideavet/ideavet/internal/config"
	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
	"github.com/ideavet/ideavet/internal/orchestrator"
	"github.com/ideavet/ideavet/internal/registry"
)

// app bundles the wired components behind every command.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *registry.Registry
	backend  core.CheckpointBackend
	engine   *orchestrator.Engine
}

// loadConfig loads and validates configuration, applying persistent
// flag overrides on top.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if cfg.Debug {
		cfg.Log.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildApp wires the registry, checkpoint backend, guard, gate and
// engine from configuration. The caller must Close the returned app.
func buildApp(interactive bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	reg := registry.New(logger)
	estimator := tools.NewMVPEstimator(1.0, logger)
	reg.RegisterTool(estimator.Name(), estimator)
	for _, agent := range []core.Agent{
		agents.NewMarketResearcher(logger),
		agents.NewCompetitorAnalyzer(logger),
		agents.NewPersonaGenerator(logger),
		agents.NewMVPPlanner(estimator, logger),
	} {
		reg.RegisterAgent(agent.Name(), agent)
	}

	backend, err := checkpoint.NewBackend(cfg.Checkpoint.Backend, cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("creating checkpoint backend: %w", err)
	}

	guard := orchestrator.NewGuard(reg, orchestrator.GuardConfig{
		Timeout:    cfg.Workflow.TimeoutDuration(),
		MaxRetries: cfg.Workflow.MaxRetries,
		Backoff:    orchestrator.PolicyFromConfig(cfg.Retry),
	}, logger)

	gateEnabled := cfg.Workflow.HumanInTheLoop || interactive
	gate := orchestrator.NewGate(gateEnabled, orchestrator.NewConsoleDecider(), logger)

	engine := orchestrator.NewEngine(backend, cfg.Output.SaveIntermediateResults, logger)
	pipelines := &orchestrator.Pipelines{Guard: guard, Gate: gate, Logger: logger}
	pipelines.Register(engine)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		backend:  backend,
		engine:   engine,
	}, nil
}

// Close releases backend resources.
func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("closing checkpoint backend", "error", err)
	}
}
