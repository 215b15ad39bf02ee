package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
	"github.com/ideavet/ideavet/internal/report"
)

// Workflow names accepted by Engine.Execute.
const (
	WorkflowFullValidation = "full_validation"
	WorkflowMarketOnly     = "market_only"
	WorkflowMVPOnly        = "mvp_only"
)

// Collaborator names the built-in pipelines resolve from the registry.
const (
	AgentMarketResearcher   = "market_researcher"
	AgentCompetitorAnalyzer = "competitor_analyzer"
	AgentPersonaGenerator   = "customer_persona_generator"
	AgentMVPPlanner         = "mvp_planner"
)

// Pipelines wires the built-in validation workflows onto an engine. Each
// workflow is a Procedure built from the execution guard and, for the
// full pipeline, the feedback gate.
type Pipelines struct {
	Guard  *Guard
	Gate   *Gate
	Logger *logging.Logger
}

// Register binds the three validation workflows to the engine.
func (p *Pipelines) Register(e *Engine) {
	e.RegisterWorkflow(WorkflowFullValidation, p.FullValidation)
	e.RegisterWorkflow(WorkflowMarketOnly, p.MarketOnly)
	e.RegisterWorkflow(WorkflowMVPOnly, p.MVPOnly)
}

// FullValidation runs the four-stage pipeline: market research,
// competitor analysis, customer personas, then (gated on human approval
// when enabled) MVP planning and report synthesis. A failed stage stops
// the pipeline and yields a failed report carrying everything collected
// so far; the report is a return value, not an error.
func (p *Pipelines) FullValidation(ctx context.Context, rc *RunContext, input map[string]any) (any, error) {
	idea, err := core.ParseIdea(input)
	if err != nil {
		return nil, err
	}
	rc.Logger.Info("validating idea", "idea", idea.Name)

	market, res, err := p.stage(ctx, rc, core.StageMarket, AgentMarketResearcher, idea.AsMap())
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return p.failed(rc, idea, res, nil, nil, nil)
	}
	rc.Checkpoint("market_research", market)

	competitorInput := idea.AsMap()
	competitorInput["market_research"] = market
	competitor, res, err := p.stage(ctx, rc, core.StageCompetitor, AgentCompetitorAnalyzer, competitorInput)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return p.failed(rc, idea, res, market, nil, nil)
	}
	rc.Checkpoint("competitor_analysis", competitor)

	personaInput := idea.AsMap()
	personaInput["market_research"] = market
	personaInput["competitor_data"] = competitor
	persona, res, err := p.stage(ctx, rc, core.StagePersona, AgentPersonaGenerator, personaInput)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return p.failed(rc, idea, res, market, competitor, nil)
	}
	rc.Checkpoint("customer_personas", persona)

	answer, err := p.Gate.Ask(ctx,
		"Review the market research, competitor analysis and customer personas. Proceed with MVP planning?",
		[]string{"proceed", "stop"})
	if err != nil {
		return nil, err
	}
	if answer != "proceed" {
		rc.Logger.Info("pipeline halted before MVP planning", "answer", answer)
		interim := core.NewInterimReport(idea, market, competitor, persona)
		rc.Checkpoint("interim_report", interim)
		p.saveReport(rc, idea.Name, interim)
		return interim, nil
	}

	mvpInput := idea.AsMap()
	mvpInput["market_data"] = market
	mvpInput["competitor_data"] = competitor
	mvpInput["customer_personas"] = persona
	mvp, res, err := p.stage(ctx, rc, core.StageMVP, AgentMVPPlanner, mvpInput)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return p.failed(rc, idea, res, market, competitor, persona)
	}
	rc.Checkpoint("mvp_plan", mvp)

	final := report.Synthesize(idea, market, competitor, persona, mvp)
	rc.Checkpoint("validation_report", final)
	p.saveReport(rc, idea.Name, final)
	return final, nil
}

// MarketOnly runs just the market research stage and returns a
// simplified report without score or recommendations.
func (p *Pipelines) MarketOnly(ctx context.Context, rc *RunContext, input map[string]any) (any, error) {
	idea, err := core.ParseIdea(input)
	if err != nil {
		return nil, err
	}
	rc.Logger.Info("running market research", "idea", idea.Name)

	market, res, err := p.stage(ctx, rc, core.StageMarket, AgentMarketResearcher, idea.AsMap())
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return p.failed(rc, idea, res, nil, nil, nil)
	}

	out := &core.MarketOnlyReport{
		Idea:           *idea,
		MarketAnalysis: market,
		Timestamp:      time.Now(),
	}
	rc.Checkpoint("market_only_report", out)
	return out, nil
}

// mvpRequiredKeys are the upstream payloads MVPOnly needs; callers
// supply them from a prior run's artifacts.
var mvpRequiredKeys = []string{"market_data", "competitor_data", "customer_personas"}

// MVPOnly runs just MVP planning over externally supplied upstream
// data. Missing inputs fail the precondition before the planner runs.
func (p *Pipelines) MVPOnly(ctx context.Context, rc *RunContext, input map[string]any) (any, error) {
	idea, err := core.ParseIdea(input)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range mvpRequiredKeys {
		if _, ok := input[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		precond := core.ErrPrecondition(
			fmt.Sprintf("missing required data: %s", strings.Join(missing, ", ")))
		rc.Logger.Warn("mvp planning missing upstream data", "error", precond)
		return &core.PipelineError{Error: precond.Message}, nil
	}
	rc.Logger.Info("planning mvp", "idea", idea.Name)

	plannerInput := idea.AsMap()
	for _, key := range mvpRequiredKeys {
		plannerInput[key] = input[key]
	}
	mvp, res, err := p.stage(ctx, rc, core.StageMVP, AgentMVPPlanner, plannerInput)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded {
		return &core.PipelineError{Error: res.Err}, nil
	}

	out := &core.MVPOnlyReport{
		Idea:      *idea,
		MVPPlan:   mvp,
		Timestamp: time.Now(),
	}
	rc.Checkpoint("mvp_only_report", out)
	return out, nil
}

// stage runs one guarded agent call and hands back its payload alongside
// the result. The error is non-nil only for unregistered agents.
func (p *Pipelines) stage(ctx context.Context, rc *RunContext, stage core.Stage, agent string, input map[string]any) (map[string]any, *core.StageResult, error) {
	log := rc.Logger.WithStage(stage.String())
	log.Info("stage started", "agent", agent)
	res, err := p.Guard.RunAgent(ctx, rc, agent, input)
	if err != nil {
		return nil, nil, err
	}
	log.Info("stage finished", "succeeded", res.Succeeded, "attempts", res.Attempts)
	return res.Payload, res, nil
}

// failed builds, checkpoints and persists the failed report for an
// unrecoverable stage.
func (p *Pipelines) failed(rc *RunContext, idea *core.StartupIdea, res *core.StageResult, market, competitor, persona map[string]any) (any, error) {
	rep := core.NewFailedReport(res.Err, idea, market, competitor, persona)
	rc.Checkpoint("failed_report", rep)
	p.saveReport(rc, idea.Name, rep)
	return rep, nil
}

// saveReport persists a report artifact; persistence failures are logged
// and never fail the pipeline.
func (p *Pipelines) saveReport(rc *RunContext, ideaName string, rep any) {
	path, err := rc.SaveReport(ideaName, rep)
	if err != nil {
		rc.Logger.Warn("failed to save report artifact", "error", err)
		return
	}
	if path != "" {
		rc.Logger.Info("report saved", "path", path)
	}
}
