package report

// StageData is the normalized stage payloads the scorer reads from.
// Absent stages leave their fields nil and contribute nothing.
type StageData struct {
	Market     map[string]any
	Competitor map[string]any
	Personas   []map[string]any
	MVP        map[string]any
}

// scoreRule is one additive adjustment to the validation score. Rules
// within a group are tiered (first match wins); groups sum.
type scoreRule struct {
	name  string
	match func(d *StageData) bool
	delta float64
}

// ruleGroups holds the scoring model. The score starts at the 50-point
// baseline, each group contributes the delta of its first matching rule,
// and the sum is clamped to [0, 100].
var ruleGroups = [][]scoreRule{
	{
		{"market size above $1B", func(d *StageData) bool { return marketSize(d) > 1_000_000_000 }, 10},
		{"market size above $100M", func(d *StageData) bool { return marketSize(d) > 100_000_000 }, 5},
		{"market size below $10M", func(d *StageData) bool { return marketSizeKnown(d) && marketSize(d) < 10_000_000 }, -5},
	},
	{
		{"growth above 20%", func(d *StageData) bool { return growthRate(d) > 20 }, 10},
		{"growth above 10%", func(d *StageData) bool { return growthRate(d) > 10 }, 5},
		{"negative growth", func(d *StageData) bool { return growthKnown(d) && growthRate(d) < 0 }, -10},
		{"growth below 5%", func(d *StageData) bool { return growthKnown(d) && growthRate(d) < 5 }, -5},
	},
	{
		{"no direct competitors", func(d *StageData) bool { return competitorsKnown(d) && directCompetitors(d) == 0 }, 5},
		{"crowded market", func(d *StageData) bool { return directCompetitors(d) > 10 }, -5},
	},
	{
		{"many market gaps", func(d *StageData) bool { return marketGaps(d) > 3 }, 10},
		{"market gaps identified", func(d *StageData) bool { return marketGaps(d) > 0 }, 5},
	},
	{
		{"high persona pain", func(d *StageData) bool { return personaPain(d) == "high" }, 10},
		{"medium persona pain", func(d *StageData) bool { return personaPain(d) == "medium" }, 5},
		{"low persona pain", func(d *StageData) bool { return personaPain(d) == "low" }, -5},
	},
	{
		{"high willingness to pay", func(d *StageData) bool { return willingnessToPay(d) == "high" }, 5},
		{"low willingness to pay", func(d *StageData) bool { return willingnessToPay(d) == "low" }, -5},
	},
	{
		{"fast MVP build", func(d *StageData) bool { return devWeeksKnown(d) && devWeeks(d) < 6 }, 5},
		{"slow MVP build", func(d *StageData) bool { return devWeeks(d) > 12 }, -5},
	},
	{
		{"cheap MVP build", func(d *StageData) bool { return minCostKnown(d) && minCost(d) < 15_000 }, 5},
		{"expensive MVP build", func(d *StageData) bool { return minCost(d) > 50_000 }, -5},
	},
}

const (
	scoreBaseline = 50.0
	scoreFloor    = 0.0
	scoreCeiling  = 100.0
)

// Score computes the 0-100 validation score from the collected stage
// payloads. The function is deterministic: identical inputs always
// produce identical scores.
func Score(d *StageData) float64 {
	score := scoreBaseline
	for _, group := range ruleGroups {
		for _, rule := range group {
			if rule.match(d) {
				score += rule.delta
				break
			}
		}
	}
	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}

// Signal accessors over the loosely-typed stage payloads. Each reports
// absence as the zero value with a matching *Known helper where the
// zero value is a meaningful signal.

func marketTrends(d *StageData) map[string]any {
	return getMap(d.Market, "market_trends")
}

func marketSize(d *StageData) float64 {
	v, _ := getFloat(marketTrends(d), "market_size")
	return v
}

func marketSizeKnown(d *StageData) bool {
	_, ok := getFloat(marketTrends(d), "market_size")
	return ok
}

func growthRate(d *StageData) float64 {
	v, _ := getFloat(marketTrends(d), "growth_rate")
	return v
}

func growthKnown(d *StageData) bool {
	_, ok := getFloat(marketTrends(d), "growth_rate")
	return ok
}

func directCompetitors(d *StageData) int {
	count := 0
	for _, c := range getSlice(d.Competitor, "competitors") {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := getString(m, "type"); t == "direct" {
			count++
		}
	}
	return count
}

func competitorsKnown(d *StageData) bool {
	if d.Competitor == nil {
		return false
	}
	_, ok := d.Competitor["competitors"]
	return ok
}

func marketGaps(d *StageData) int {
	return len(getSlice(d.Competitor, "market_gaps"))
}

func primaryPersona(d *StageData) map[string]any {
	if len(d.Personas) == 0 {
		return nil
	}
	return d.Personas[0]
}

func personaPain(d *StageData) string {
	v, _ := getString(primaryPersona(d), "pain_level")
	return v
}

func willingnessToPay(d *StageData) string {
	v, _ := getString(primaryPersona(d), "willingness_to_pay")
	return v
}

func devWeeks(d *StageData) float64 {
	v, _ := getFloat(getMap(d.MVP, "development_time"), "weeks")
	return v
}

func devWeeksKnown(d *StageData) bool {
	_, ok := getFloat(getMap(d.MVP, "development_time"), "weeks")
	return ok
}

func minCost(d *StageData) float64 {
	v, _ := getFloat(getMap(d.MVP, "cost_estimate"), "min")
	return v
}

func minCostKnown(d *StageData) bool {
	_, ok := getFloat(getMap(d.MVP, "cost_estimate"), "min")
	return ok
}

// Nested-access helpers tolerant of the numeric types JSON decoding and
// in-process payloads produce.

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	return v
}

func getSlice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	default:
		return nil
	}
}

func getFloat(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func getString(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}
