package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavet/ideavet/internal/adapters/agents"
	"github.com/ideavet/ideavet/internal/adapters/tools"
	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
	"github.com/ideavet/ideavet/internal/registry"
)

func ideaInput() map[string]any {
	return map[string]any{
		"idea": map[string]any{
			"name":              "JournalAI",
			"description":       "AI-assisted journaling for busy professionals",
			"industry":          "wellness",
			"problem_statement": "People want to journal but never keep the habit",
			"revenue_model":     "subscription",
		},
	}
}

// fullRegistry wires the real rule-based collaborators.
func fullRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	log := logging.NewNop()
	reg := registry.New(log)
	estimator := tools.NewMVPEstimator(1.0, log)
	reg.RegisterTool(estimator.Name(), estimator)
	reg.RegisterAgent(AgentMarketResearcher, agents.NewMarketResearcher(log))
	reg.RegisterAgent(AgentCompetitorAnalyzer, agents.NewCompetitorAnalyzer(log))
	reg.RegisterAgent(AgentPersonaGenerator, agents.NewPersonaGenerator(log))
	reg.RegisterAgent(AgentMVPPlanner, agents.NewMVPPlanner(estimator, log))
	return reg
}

func testEngine(t *testing.T, reg *registry.Registry, gate *Gate, backend *memBackend) *Engine {
	t.Helper()
	log := logging.NewNop()
	guard := NewGuard(reg, GuardConfig{Timeout: 5 * time.Second, MaxRetries: 2}, log)
	if gate == nil {
		gate = NewGate(false, nil, log)
	}
	e := NewEngine(backend, true, log)
	(&Pipelines{Guard: guard, Gate: gate, Logger: log}).Register(e)
	return e
}

func TestFullValidation_Completes(t *testing.T) {
	backend := newMemBackend()
	e := testEngine(t, fullRegistry(t), nil, backend)

	result, err := e.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err)

	rep, ok := result.(*core.ValidationReport)
	require.True(t, ok, "result type = %T", result)
	assert.True(t, rep.Success)
	assert.Equal(t, core.ReportCompleted, rep.Status)
	assert.NotNil(t, rep.MarketAnalysis)
	assert.NotNil(t, rep.CompetitorAnalysis)
	assert.NotEmpty(t, rep.CustomerPersonas)
	assert.NotNil(t, rep.MVPPlan)
	require.NotNil(t, rep.ValidationScore)
	assert.GreaterOrEqual(t, *rep.ValidationScore, 0.0)
	assert.LessOrEqual(t, *rep.ValidationScore, 100.0)
	assert.GreaterOrEqual(t, len(rep.Recommendations), 3)

	for _, key := range []string{
		"market_research", "competitor_analysis", "customer_personas",
		"mvp_plan", "validation_report", "final_result",
	} {
		_, ok := backend.saved(key)
		assert.True(t, ok, "missing checkpoint %s", key)
	}
	// Guard checkpoints under {workflow}_{agent} as well.
	_, ok = backend.saved("full_validation_market_researcher")
	assert.True(t, ok)
	assert.NotEmpty(t, backend.reports, "final report artifact saved")
}

func TestFullValidation_Deterministic(t *testing.T) {
	e1 := testEngine(t, fullRegistry(t), nil, newMemBackend())
	e2 := testEngine(t, fullRegistry(t), nil, newMemBackend())

	r1, err := e1.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err)
	r2, err := e2.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err)

	rep1 := r1.(*core.ValidationReport)
	rep2 := r2.(*core.ValidationReport)
	assert.Equal(t, *rep1.ValidationScore, *rep2.ValidationScore,
		"identical ideas must score identically")
}

func TestFullValidation_GateStopsBeforeMVP(t *testing.T) {
	backend := newMemBackend()
	gate := NewGate(true, StaticDecider{Answer: "stop"}, logging.NewNop())
	e := testEngine(t, fullRegistry(t), gate, backend)

	result, err := e.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err)

	rep, ok := result.(*core.ValidationReport)
	require.True(t, ok)
	assert.True(t, rep.Success, "interim report is a success")
	assert.Equal(t, core.ReportInterim, rep.Status)
	assert.Nil(t, rep.MVPPlan)
	assert.Nil(t, rep.ValidationScore)
	assert.NotEmpty(t, rep.CustomerPersonas)

	_, ok = backend.saved("interim_report")
	assert.True(t, ok)
	_, ok = backend.saved("mvp_plan")
	assert.False(t, ok, "mvp stage must not run after stop")
}

func TestFullValidation_StageFailureStopsAdvance(t *testing.T) {
	reg := fullRegistry(t)
	// Replace the persona generator with one that always fails.
	reg.RegisterAgent(AgentPersonaGenerator, &stubAgent{
		name: AgentPersonaGenerator,
		fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
			return nil, errors.New("persona model unavailable")
		},
	})
	mvpCalled := false
	reg.RegisterAgent(AgentMVPPlanner, &stubAgent{
		name: AgentMVPPlanner,
		fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
			mvpCalled = true
			return map[string]any{}, nil
		},
	})

	backend := newMemBackend()
	e := testEngine(t, reg, nil, backend)

	result, err := e.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err, "stage failure yields a report, not an error")

	rep, ok := result.(*core.ValidationReport)
	require.True(t, ok)
	assert.False(t, rep.Success)
	assert.Equal(t, core.ReportFailed, rep.Status)
	assert.Contains(t, rep.Error, "persona model unavailable")
	assert.NotNil(t, rep.MarketAnalysis, "completed stage payload carried")
	assert.NotNil(t, rep.CompetitorAnalysis, "completed stage payload carried")
	assert.Empty(t, rep.CustomerPersonas, "failed stage leaves its field empty")
	assert.Nil(t, rep.MVPPlan)
	assert.False(t, mvpCalled, "pipeline must not advance past a failed stage")
}

func TestFullValidation_PersonaStageReceivesUpstreamPayloads(t *testing.T) {
	reg := fullRegistry(t)
	var seen []string
	reg.RegisterAgent(AgentPersonaGenerator, &stubAgent{
		name: AgentPersonaGenerator,
		fn: func(_ context.Context, input map[string]any) (map[string]any, error) {
			for key := range input {
				seen = append(seen, key)
			}
			return map[string]any{"personas": []any{
				map[string]any{"pain_level": "high"},
			}}, nil
		},
	})
	e := testEngine(t, reg, nil, newMemBackend())

	_, err := e.Execute(context.Background(), WorkflowFullValidation, ideaInput())
	require.NoError(t, err)
	assert.Contains(t, seen, "market_research")
	assert.Contains(t, seen, "competitor_data",
		"persona stage sees the competitor payload alongside market research")
}

func TestFullValidation_InvalidIdea(t *testing.T) {
	e := testEngine(t, fullRegistry(t), nil, newMemBackend())

	_, err := e.Execute(context.Background(), WorkflowFullValidation,
		map[string]any{"idea": map[string]any{"name": "NoDescription"}})
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}

func TestMarketOnly_ReturnsSimplifiedReport(t *testing.T) {
	backend := newMemBackend()
	e := testEngine(t, fullRegistry(t), nil, backend)

	result, err := e.Execute(context.Background(), WorkflowMarketOnly, ideaInput())
	require.NoError(t, err)

	rep, ok := result.(*core.MarketOnlyReport)
	require.True(t, ok, "result type = %T", result)
	assert.Equal(t, "JournalAI", rep.Idea.Name)
	assert.Contains(t, rep.MarketAnalysis, "market_trends")
	_, ok = backend.saved("market_only_report")
	assert.True(t, ok)
}

func TestMarketOnly_StageFailureReportsIdea(t *testing.T) {
	reg := fullRegistry(t)
	reg.RegisterAgent(AgentMarketResearcher, &stubAgent{
		name: AgentMarketResearcher,
		fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
			return nil, errors.New("research backend down")
		},
	})
	e := testEngine(t, reg, nil, newMemBackend())

	result, err := e.Execute(context.Background(), WorkflowMarketOnly, ideaInput())
	require.NoError(t, err)

	rep, ok := result.(*core.ValidationReport)
	require.True(t, ok, "result type = %T", result)
	assert.False(t, rep.Success)
	assert.Equal(t, core.ReportFailed, rep.Status)
	assert.Equal(t, "JournalAI", rep.Idea.Name, "failure report carries the idea")
	assert.Contains(t, rep.Error, "research backend down")
	assert.False(t, rep.Timestamp.IsZero())
	assert.Nil(t, rep.MarketAnalysis)
}

func TestMVPOnly_MissingDataFailsBeforePlanner(t *testing.T) {
	reg := fullRegistry(t)
	plannerCalled := false
	reg.RegisterAgent(AgentMVPPlanner, &stubAgent{
		name: AgentMVPPlanner,
		fn: func(_ context.Context, _ map[string]any) (map[string]any, error) {
			plannerCalled = true
			return map[string]any{}, nil
		},
	})
	e := testEngine(t, reg, nil, newMemBackend())

	input := ideaInput()
	input["market_data"] = map[string]any{}
	input["customer_personas"] = map[string]any{}
	// competitor_data deliberately absent

	result, err := e.Execute(context.Background(), WorkflowMVPOnly, input)
	require.NoError(t, err)

	perr, ok := result.(*core.PipelineError)
	require.True(t, ok, "result type = %T", result)
	assert.False(t, perr.Success)
	assert.Contains(t, perr.Error, "competitor_data")
	assert.False(t, plannerCalled, "planner must not run without its inputs")
}

func TestMVPOnly_Succeeds(t *testing.T) {
	backend := newMemBackend()
	e := testEngine(t, fullRegistry(t), nil, backend)

	input := ideaInput()
	input["market_data"] = map[string]any{}
	input["competitor_data"] = map[string]any{"market_gaps": []any{"gap1", "gap2", "gap3"}}
	input["customer_personas"] = map[string]any{"personas": []any{
		map[string]any{"pain_level": "high"},
	}}

	result, err := e.Execute(context.Background(), WorkflowMVPOnly, input)
	require.NoError(t, err)

	rep, ok := result.(*core.MVPOnlyReport)
	require.True(t, ok, "result type = %T", result)
	assert.Contains(t, rep.MVPPlan, "features")
	assert.Contains(t, rep.MVPPlan, "development_time")
	assert.Contains(t, rep.MVPPlan, "cost_estimate")
	_, ok = backend.saved("mvp_only_report")
	assert.True(t, ok)
}
