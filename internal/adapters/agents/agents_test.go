package agents

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavet/ideavet/internal/adapters/tools"
	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

func ideaInput() map[string]any {
	return map[string]any{
		"name":              "JournalAI",
		"description":       "AI-assisted journaling for busy professionals",
		"industry":          "wellness",
		"problem_statement": "People want to journal but never keep the habit",
		"revenue_model":     "subscription",
	}
}

func allAgents() []core.Agent {
	log := logging.NewNop()
	estimator := tools.NewMVPEstimator(1.0, log)
	return []core.Agent{
		NewMarketResearcher(log),
		NewCompetitorAnalyzer(log),
		NewPersonaGenerator(log),
		NewMVPPlanner(estimator, log),
	}
}

func TestAgents_ErrorEnvelopeWithoutIdea(t *testing.T) {
	for _, agent := range allAgents() {
		t.Run(agent.Name(), func(t *testing.T) {
			payload, err := agent.Process(context.Background(), map[string]any{})
			require.NoError(t, err, "missing idea is an envelope error, not a Go error")
			assert.Equal(t, "error", payload["status"])
			assert.Contains(t, payload["message"], "no startup idea")
		})
	}
}

func TestAgents_SuccessEnvelopeShape(t *testing.T) {
	for _, agent := range allAgents() {
		t.Run(agent.Name(), func(t *testing.T) {
			payload, err := agent.Process(context.Background(), ideaInput())
			require.NoError(t, err)
			assert.Equal(t, "success", payload["status"])
			assert.NotEmpty(t, payload["message"])
			data, ok := payload["data"].(map[string]any)
			require.True(t, ok, "data block missing")
			assert.NotEmpty(t, data)
		})
	}
}

func TestAgents_Deterministic(t *testing.T) {
	for _, agent := range allAgents() {
		t.Run(agent.Name(), func(t *testing.T) {
			first, err := agent.Process(context.Background(), ideaInput())
			require.NoError(t, err)
			second, err := agent.Process(context.Background(), ideaInput())
			require.NoError(t, err)
			assert.True(t, reflect.DeepEqual(first, second),
				"same idea must produce the same analysis")
		})
	}
}

func TestAgents_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, agent := range allAgents() {
		t.Run(agent.Name(), func(t *testing.T) {
			_, err := agent.Process(ctx, ideaInput())
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestMarketResearcher_TrendsShape(t *testing.T) {
	payload, err := NewMarketResearcher(nil).Process(context.Background(), ideaInput())
	require.NoError(t, err)
	data := payload["data"].(map[string]any)

	trends, ok := data["market_trends"].(map[string]any)
	require.True(t, ok)
	size, ok := trends["market_size"].(float64)
	require.True(t, ok)
	assert.Greater(t, size, 0.0)
	_, ok = trends["growth_rate"].(float64)
	assert.True(t, ok)
	assert.NotEmpty(t, trends["direction"])
}

func TestMarketResearcher_IndustryChangesProfile(t *testing.T) {
	a := NewMarketResearcher(nil)
	wellness, err := a.Process(context.Background(), ideaInput())
	require.NoError(t, err)

	fintech := ideaInput()
	fintech["industry"] = "fintech"
	other, err := a.Process(context.Background(), fintech)
	require.NoError(t, err)

	ws := wellness["data"].(map[string]any)["segment"]
	fs := other["data"].(map[string]any)["segment"]
	assert.NotEqual(t, ws, fs)
}

func TestCompetitorAnalyzer_Shape(t *testing.T) {
	payload, err := NewCompetitorAnalyzer(nil).Process(context.Background(), ideaInput())
	require.NoError(t, err)
	data := payload["data"].(map[string]any)

	competitors, ok := data["competitors"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, competitors)
	for _, c := range competitors {
		m := c.(map[string]any)
		assert.Contains(t, []any{"direct", "indirect"}, m["type"])
		assert.NotEmpty(t, m["name"])
	}

	gaps, ok := data["market_gaps"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, gaps)
	assert.Equal(t, len(competitors), data["total_competitors_found"])
}

func TestPersonaGenerator_ProblemStatementRaisesPain(t *testing.T) {
	payload, err := NewPersonaGenerator(nil).Process(context.Background(), ideaInput())
	require.NoError(t, err)
	data := payload["data"].(map[string]any)

	personas, ok := data["personas"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, personas)

	primary := personas[0].(map[string]any)
	assert.Equal(t, "high", primary["pain_level"],
		"stated problem statement pins primary pain to high")
	assert.NotEqual(t, "low", primary["willingness_to_pay"],
		"stated revenue model lifts willingness to pay above low")

	painPoints, ok := primary["pain_points"].([]any)
	require.True(t, ok)
	assert.Equal(t, "People want to journal but never keep the habit", painPoints[0],
		"the stated problem leads the pain points")
}

func TestPersonaGenerator_CompetitorGapBecomesPainPoint(t *testing.T) {
	input := ideaInput()
	input["competitor_data"] = map[string]any{
		"market_gaps": []any{"No offering tailored to small teams"},
	}

	payload, err := NewPersonaGenerator(nil).Process(context.Background(), input)
	require.NoError(t, err)
	data := payload["data"].(map[string]any)
	primary := data["personas"].([]any)[0].(map[string]any)

	painPoints := primary["pain_points"].([]any)
	found := false
	for _, p := range painPoints {
		if s, ok := p.(string); ok && strings.Contains(s, "No offering tailored to small teams") {
			found = true
		}
	}
	assert.True(t, found, "pain_points = %v", painPoints)
}

func TestMVPPlanner_MergesEstimates(t *testing.T) {
	log := logging.NewNop()
	planner := NewMVPPlanner(tools.NewMVPEstimator(1.0, log), log)

	payload, err := planner.Process(context.Background(), ideaInput())
	require.NoError(t, err)
	data := payload["data"].(map[string]any)

	assert.NotEmpty(t, data["features"])
	assert.NotEmpty(t, data["tech_stack"])

	entries, ok := data["assumptions_and_risks"].([]any)
	require.True(t, ok)
	hasRisk := false
	for _, e := range entries {
		m := e.(map[string]any)
		assert.Contains(t, []any{"assumption", "risk"}, m["type"])
		assert.NotEmpty(t, m["description"])
		if m["type"] == "risk" {
			hasRisk = true
		}
	}
	assert.True(t, hasRisk, "the plan flags at least one risk")

	devTime, ok := data["development_time"].(map[string]any)
	require.True(t, ok, "estimator output merged into plan")
	assert.Greater(t, devTime["weeks"].(float64), 0.0)
	cost, ok := data["cost_estimate"].(map[string]any)
	require.True(t, ok)
	assert.Greater(t, cost["min"].(float64), 0.0)
}

func TestMVPPlanner_WithoutEstimator(t *testing.T) {
	planner := NewMVPPlanner(nil, logging.NewNop())
	payload, err := planner.Process(context.Background(), ideaInput())
	require.NoError(t, err)
	data := payload["data"].(map[string]any)

	assert.NotEmpty(t, data["features"])
	_, ok := data["development_time"]
	assert.False(t, ok, "no estimates without the estimator tool")
}
