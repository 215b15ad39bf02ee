package report

import (
	"fmt"
	"strings"
)

// recommendRule emits one recommendation when its condition holds.
type recommendRule struct {
	match func(d *StageData) bool
	text  func(d *StageData) string
}

var recommendRules = []recommendRule{
	{
		match: func(d *StageData) bool { return growthKnown(d) && growthRate(d) < 5 },
		text: func(d *StageData) string {
			return "Consider pivoting to a higher-growth market segment as the current market shows low growth."
		},
	},
	{
		match: func(d *StageData) bool { return growthRate(d) > 20 },
		text: func(d *StageData) string {
			return "The market is growing rapidly. Consider securing funding quickly to capitalize on growth opportunities."
		},
	},
	{
		match: func(d *StageData) bool { return len(marketGapNames(d)) > 0 },
		text: func(d *StageData) string {
			return fmt.Sprintf("Focus on these identified gaps in the market: %s",
				strings.Join(marketGapNames(d), ", "))
		},
	},
	{
		match: func(d *StageData) bool { return len(painPoints(d)) > 0 },
		text: func(d *StageData) string {
			return fmt.Sprintf("Prioritize addressing these customer pain points: %s",
				strings.Join(painPoints(d), ", "))
		},
	},
	{
		match: func(d *StageData) bool { return len(getSlice(d.MVP, "features")) > 0 },
		text: func(d *StageData) string {
			return "Focus on building and validating the core MVP features before expanding scope."
		},
	},
	{
		match: func(d *StageData) bool { _, ok := firstRisk(d); return ok },
		text: func(d *StageData) string {
			desc, _ := firstRisk(d)
			return fmt.Sprintf("Mitigate key risks early: %s", desc)
		},
	},
}

// Fallback recommendations keep the list useful when few signals fired.
var genericRecommendations = []string{
	"Validate your assumptions with real customer interviews before building the MVP.",
	"Consider running small experiments to test key hypotheses about your target market.",
}

const minRecommendations = 3

// Recommend derives actionable recommendations from the stage payloads.
// When the signals produce fewer than three, both generic fallbacks are
// appended.
func Recommend(d *StageData) []string {
	recs := make([]string, 0, len(recommendRules)+len(genericRecommendations))
	for _, rule := range recommendRules {
		if rule.match(d) {
			recs = append(recs, rule.text(d))
		}
	}
	if len(recs) < minRecommendations {
		recs = append(recs, genericRecommendations...)
	}
	return recs
}

// recommendDetailLimit caps how many gap or pain-point names a single
// recommendation spells out.
const recommendDetailLimit = 3

func marketGapNames(d *StageData) []string {
	return stringItems(getSlice(d.Competitor, "market_gaps"), recommendDetailLimit)
}

func painPoints(d *StageData) []string {
	return stringItems(getSlice(primaryPersona(d), "pain_points"), recommendDetailLimit)
}

// firstRisk returns the description of the first entry typed "risk" in
// the MVP plan's assumptions_and_risks list.
func firstRisk(d *StageData) (string, bool) {
	for _, item := range getSlice(d.MVP, "assumptions_and_risks") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := getString(m, "type"); t != "risk" {
			continue
		}
		desc, _ := getString(m, "description")
		return desc, true
	}
	return "", false
}

func stringItems(list []any, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
