package agents

import (
	"context"
	"fmt"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// MarketResearcher analyzes market size, growth and interest for an
// idea from its industry segment.
type MarketResearcher struct {
	logger *logging.Logger
}

// NewMarketResearcher creates the market research agent.
func NewMarketResearcher(logger *logging.Logger) *MarketResearcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MarketResearcher{logger: logger.WithCollaborator("market_researcher")}
}

func (a *MarketResearcher) Name() string { return "market_researcher" }

// Process derives the market analysis. The payload's market_trends block
// carries the size and growth signals downstream consumers read.
func (a *MarketResearcher) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasIdea(input) {
		return errorEnvelope("no startup idea provided"), nil
	}

	name := stringField(input, "name")
	profile := profileFor(input)
	seed := ideaSeed(input)

	marketSize := vary(seed, "market_size", profile.marketSize, profile.marketSize*0.25)
	growthRate := vary(seed, "growth_rate", profile.growthRate, 4.0)
	interest := vary(seed, "interest_level", 55, 25)

	direction := "Stable"
	switch {
	case growthRate > 20:
		direction = "Rapidly growing"
	case growthRate > 0:
		direction = "Growing"
	case growthRate < -2:
		direction = "Declining"
	}

	a.logger.Debug("market analysis derived",
		"idea", name, "segment", profile.segment, "growth_rate", growthRate)

	data := map[string]any{
		"idea_summary": fmt.Sprintf("Market analysis for: %s", name),
		"segment":      profile.segment,
		"market_trends": map[string]any{
			"market_size":    marketSize,
			"growth_rate":    growthRate,
			"interest_level": interest,
			"direction":      direction,
		},
		"key_insights": []any{
			fmt.Sprintf("The %s segment shows a %s trajectory", profile.segment, direction),
			fmt.Sprintf("Estimated addressable market of $%.0fM", marketSize/1e6),
		},
	}
	return successEnvelope("Market research completed successfully", data), nil
}

// Ping reports availability for the doctor command.
func (a *MarketResearcher) Ping(ctx context.Context) error {
	return ctx.Err()
}

var (
	_ core.Agent  = (*MarketResearcher)(nil)
	_ core.Pinger = (*MarketResearcher)(nil)
)
