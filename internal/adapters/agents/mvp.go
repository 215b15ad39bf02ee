package agents

import (
	"context"
	"fmt"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// MVPPlanner defines the minimal feature set for an idea, suggests a
// tech stack and estimates the build through the estimator tool.
type MVPPlanner struct {
	estimator core.Tool
	logger    *logging.Logger
}

// NewMVPPlanner creates the MVP planning agent. The estimator tool is
// optional; without it the plan carries no time or cost estimates.
func NewMVPPlanner(estimator core.Tool, logger *logging.Logger) *MVPPlanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MVPPlanner{
		estimator: estimator,
		logger:    logger.WithCollaborator("mvp_planner"),
	}
}

func (a *MVPPlanner) Name() string { return "mvp_planner" }

// Process derives the MVP plan: core features (pain level of the
// primary persona and identified market gaps shape the scope), a tech
// stack for the segment, and the estimator's time and cost figures.
func (a *MVPPlanner) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasIdea(input) {
		return errorEnvelope("no startup idea provided"), nil
	}

	name := stringField(input, "name")
	profile := profileFor(input)
	seed := ideaSeed(input)

	features := a.deriveFeatures(input, seed)
	techStack := techStackFor(profile.segment)

	data := map[string]any{
		"features":              features,
		"tech_stack":            techStack,
		"assumptions_and_risks": assumptionsAndRisks(seed),
	}

	if a.estimator != nil {
		estimate, err := a.estimator.Run(ctx, map[string]any{
			"features":   features,
			"tech_stack": techStack,
		})
		if err != nil {
			return nil, err
		}
		if status, _ := estimate["status"].(string); status == "error" {
			msg, _ := estimate["message"].(string)
			return errorEnvelope(fmt.Sprintf("mvp estimation failed: %s", msg)), nil
		}
		for _, key := range []string{"development_time", "cost_estimate", "total_hours", "overall_complexity"} {
			if v, ok := estimate[key]; ok {
				data[key] = v
			}
		}
	}

	a.logger.Debug("mvp plan created", "idea", name, "features", len(features))
	return successEnvelope("MVP plan created successfully", data), nil
}

// Ping reports availability for the doctor command.
func (a *MVPPlanner) Ping(ctx context.Context) error {
	return ctx.Err()
}

// deriveFeatures builds the feature list. Every plan starts from the
// core loop; gaps found by competitor analysis and a high-pain primary
// persona add scope.
func (a *MVPPlanner) deriveFeatures(input map[string]any, seed uint32) []any {
	features := []any{
		feature("User onboarding", "Account creation and first-run experience", "low"),
		feature("Core workflow", "The single flow that delivers the idea's value", pick(seed, "corefx", []string{"medium", "high"})),
		feature("Result sharing", "Export or share outcomes with others", "low"),
	}

	if gaps := gapsFromCompetitors(input); len(gaps) > 2 {
		features = append(features,
			feature("Gap differentiator", "Address the most underserved gap competitors leave open", "medium"))
	}
	if primaryPainLevel(input) == "high" {
		features = append(features,
			feature("Pain-point fast path", "Shortcut straight to relieving the primary pain point", "medium"))
	}
	return features
}

var riskPool = []string{
	"Core workflow adoption may stall without onboarding polish",
	"The build may outlast the runway if scope creeps",
	"Key integrations may take longer than the estimate assumes",
}

// assumptionsAndRisks lists the plan's working assumptions plus the
// flagged risk, each entry typed so downstream analysis can tell them
// apart.
func assumptionsAndRisks(seed uint32) []any {
	return []any{
		map[string]any{
			"type":        "assumption",
			"description": "Scope stays fixed for the duration of the build",
		},
		map[string]any{
			"type":        "assumption",
			"description": "A single small team delivers the MVP end to end",
		},
		map[string]any{
			"type":        "risk",
			"description": pick(seed, "risk", riskPool),
		},
	}
}

func feature(name, description, complexity string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": description,
		"complexity":  complexity,
	}
}

// segmentStacks maps industry segments to a sensible default stack.
var segmentStacks = map[string][]string{
	"artificial intelligence": {"react", "node_js", "postgresql", "ai_integration", "aws"},
	"financial technology":    {"react", "django", "postgresql", "payment_processing", "aws"},
	"e-commerce":              {"react", "node_js", "postgresql", "payment_processing", "heroku"},
	"gaming":                  {"react", "node_js", "mongodb", "realtime_features", "gcp"},
}

var defaultStack = []string{"react", "node_js", "postgresql", "heroku"}

func techStackFor(segment string) []any {
	stack, ok := segmentStacks[segment]
	if !ok {
		stack = defaultStack
	}
	out := make([]any, len(stack))
	for i, s := range stack {
		out[i] = s
	}
	return out
}

func gapsFromCompetitors(input map[string]any) []any {
	competitor, ok := input["competitor_data"].(map[string]any)
	if !ok {
		return nil
	}
	gaps, _ := competitor["market_gaps"].([]any)
	return gaps
}

func primaryPainLevel(input map[string]any) string {
	personas, ok := input["customer_personas"].(map[string]any)
	if !ok {
		return ""
	}
	list, _ := personas["personas"].([]any)
	if len(list) == 0 {
		return ""
	}
	first, _ := list[0].(map[string]any)
	pain, _ := first["pain_level"].(string)
	return pain
}

var (
	_ core.Agent  = (*MVPPlanner)(nil)
	_ core.Pinger = (*MVPPlanner)(nil)
)
