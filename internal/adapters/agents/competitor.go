package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// CompetitorAnalyzer finds and classifies competitors for an idea and
// identifies gaps in the market they leave open.
type CompetitorAnalyzer struct {
	logger *logging.Logger
}

// NewCompetitorAnalyzer creates the competitor analysis agent.
func NewCompetitorAnalyzer(logger *logging.Logger) *CompetitorAnalyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CompetitorAnalyzer{logger: logger.WithCollaborator("competitor_analyzer")}
}

func (a *CompetitorAnalyzer) Name() string { return "competitor_analyzer" }

// Process derives the competitor landscape: a classified competitor
// list, the gaps between their feature sets, and pricing observations.
func (a *CompetitorAnalyzer) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasIdea(input) {
		return errorEnvelope("no startup idea provided"), nil
	}

	name := stringField(input, "name")
	profile := profileFor(input)
	seed := ideaSeed(input)

	// Crowded, fast-growing segments attract more direct competition.
	directCount := 2 + int(seed%3)
	if growth := growthFromMarket(input); growth > 15 {
		directCount += 2
	}
	indirectCount := 1 + int((seed>>8)%2)

	competitors := make([]any, 0, directCount+indirectCount)
	for i := 0; i < directCount; i++ {
		competitors = append(competitors, competitorEntry(seed, profile.segment, "direct", i))
	}
	for i := 0; i < indirectCount; i++ {
		competitors = append(competitors, competitorEntry(seed, profile.segment, "indirect", directCount+i))
	}

	gaps := marketGapsFor(seed, profile.segment)

	a.logger.Debug("competitor landscape derived",
		"idea", name, "direct", directCount, "indirect", indirectCount, "gaps", len(gaps))

	data := map[string]any{
		"competitors":             competitors,
		"market_gaps":             gaps,
		"total_competitors_found": len(competitors),
		"pricing_insights":        pick(seed, "pricing", pricingInsights),
	}
	return successEnvelope("Competitor analysis completed successfully", data), nil
}

// Ping reports availability for the doctor command.
func (a *CompetitorAnalyzer) Ping(ctx context.Context) error {
	return ctx.Err()
}

// growthFromMarket reads the upstream market growth rate when the
// pipeline threaded the market research payload through.
func growthFromMarket(input map[string]any) float64 {
	market, ok := input["market_research"].(map[string]any)
	if !ok {
		return 0
	}
	trends, ok := market["market_trends"].(map[string]any)
	if !ok {
		return 0
	}
	growth, _ := trends["growth_rate"].(float64)
	return growth
}

var competitorQualities = []struct {
	strength string
	weakness string
}{
	{"Established brand recognition", "Slow release cadence"},
	{"Large existing user base", "Aging product experience"},
	{"Strong enterprise sales motion", "Weak self-serve onboarding"},
	{"Deep feature set", "Steep learning curve"},
	{"Aggressive pricing", "Limited support quality"},
}

func competitorEntry(seed uint32, segment, kind string, idx int) map[string]any {
	quality := competitorQualities[(int(seed)+idx)%len(competitorQualities)]
	return map[string]any{
		"name":        fmt.Sprintf("%s Rival %d", titleCase(segment), idx+1),
		"type":        kind,
		"description": fmt.Sprintf("A %s player in the %s segment", kind, segment),
		"strengths":   []any{quality.strength},
		"weaknesses":  []any{quality.weakness},
	}
}

var gapPool = []string{
	"No offering tailored to small teams",
	"Poor mobile experience across incumbents",
	"No transparent usage-based pricing",
	"Weak integrations with adjacent tooling",
	"Underserved non-English markets",
}

func marketGapsFor(seed uint32, segment string) []any {
	count := 1 + int((seed>>4)%4) // 1..4 gaps
	gaps := make([]any, 0, count)
	for i := 0; i < count; i++ {
		gaps = append(gaps, fmt.Sprintf("%s (%s)", gapPool[(int(seed)+i)%len(gapPool)], segment))
	}
	return gaps
}

var pricingInsights = []string{
	"Most competitors use a freemium model",
	"Subscription pricing dominates the segment",
	"No clear pricing pattern detected",
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var (
	_ core.Agent  = (*CompetitorAnalyzer)(nil)
	_ core.Pinger = (*CompetitorAnalyzer)(nil)
)
