package agents

import (
	"context"
	"fmt"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// PersonaGenerator builds customer personas for an idea. The first
// persona in the list is the primary one downstream analysis keys off.
type PersonaGenerator struct {
	logger *logging.Logger
}

// NewPersonaGenerator creates the customer persona agent.
func NewPersonaGenerator(logger *logging.Logger) *PersonaGenerator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PersonaGenerator{logger: logger.WithCollaborator("customer_persona_generator")}
}

func (a *PersonaGenerator) Name() string { return "customer_persona_generator" }

var personaArchetypes = []struct {
	name       string
	occupation string
	age        int
}{
	{"Ana", "operations lead at a mid-size company", 34},
	{"Marcus", "independent consultant", 41},
	{"Priya", "product manager at a startup", 29},
	{"Tomás", "small business owner", 47},
	{"Leah", "graduate student", 24},
}

var painLevels = []string{"high", "medium", "low"}
var payLevels = []string{"high", "medium", "low"}

var painPointPool = []string{
	"Existing tools take too long to set up",
	"Current workflows demand constant manual effort",
	"Switching between tools fragments the work",
	"Pricing of current options does not fit small budgets",
}

// Process derives two personas. A stated problem statement raises the
// primary persona's pain level and leads their pain points; a stated
// revenue model raises their willingness to pay; gaps found by the
// upstream competitor analysis become pain points of their own.
func (a *PersonaGenerator) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasIdea(input) {
		return errorEnvelope("no startup idea provided"), nil
	}

	name := stringField(input, "name")
	seed := ideaSeed(input)

	primaryPain := pick(seed, "pain", painLevels)
	if stringField(input, "problem_statement") != "" {
		primaryPain = "high"
	}
	primaryPainPoints := derivePainPoints(input, seed)
	primaryPay := pick(seed, "pay", payLevels)
	if stringField(input, "revenue_model") != "" && primaryPay == "low" {
		primaryPay = "medium"
	}

	audience := stringField(input, "target_audience")
	if audience == "" {
		audience = "early adopters in the segment"
	}

	primary := personaArchetypes[seed%uint32(len(personaArchetypes))]
	secondary := personaArchetypes[(seed+2)%uint32(len(personaArchetypes))]

	personas := []any{
		map[string]any{
			"name":               primary.name,
			"age":                primary.age,
			"occupation":         primary.occupation,
			"pain_level":         primaryPain,
			"pain_points":        primaryPainPoints,
			"willingness_to_pay": primaryPay,
			"goals": []any{
				fmt.Sprintf("Solve the problem %s addresses without changing their workflow", name),
			},
			"quote": fmt.Sprintf("If %s actually works, I would switch tomorrow", name),
		},
		map[string]any{
			"name":               secondary.name,
			"age":                secondary.age,
			"occupation":         secondary.occupation,
			"pain_level":         pick(seed, "pain2", painLevels),
			"pain_points":        []any{pick(seed, "pp2", painPointPool)},
			"willingness_to_pay": pick(seed, "pay2", payLevels),
			"goals": []any{
				"Evaluate new tools with minimal setup cost",
			},
			"quote": "I'll try anything that saves me an hour a week",
		},
	}

	a.logger.Debug("personas generated", "idea", name,
		"primary_pain", primaryPain, "primary_pay", primaryPay)

	data := map[string]any{
		"personas":                 personas,
		"audience_characteristics": map[string]any{"target_audience": audience},
	}
	return successEnvelope("Customer personas generated successfully", data), nil
}

// Ping reports availability for the doctor command.
func (a *PersonaGenerator) Ping(ctx context.Context) error {
	return ctx.Err()
}

// derivePainPoints builds the primary persona's pain points: the stated
// problem first, a segment-typical pain, and the first gap the
// competitor analysis left open.
func derivePainPoints(input map[string]any, seed uint32) []any {
	points := make([]any, 0, 3)
	if ps := stringField(input, "problem_statement"); ps != "" {
		points = append(points, ps)
	}
	points = append(points, pick(seed, "pp1", painPointPool))
	if gap := firstCompetitorGap(input); gap != "" {
		points = append(points, fmt.Sprintf("Current alternatives leave a gap: %s", gap))
	}
	return points
}

// firstCompetitorGap reads the first market gap from the upstream
// competitor payload when the pipeline threaded it through.
func firstCompetitorGap(input map[string]any) string {
	competitor, ok := input["competitor_data"].(map[string]any)
	if !ok {
		return ""
	}
	gaps, _ := competitor["market_gaps"].([]any)
	for _, g := range gaps {
		if s, ok := g.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

var (
	_ core.Agent  = (*PersonaGenerator)(nil)
	_ core.Pinger = (*PersonaGenerator)(nil)
)
