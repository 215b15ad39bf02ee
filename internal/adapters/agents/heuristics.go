// Package agents provides rule-based collaborator implementations.
// They derive every output deterministically from the idea text, so a
// given idea always produces the same analyses and the same score.
package agents

import (
	"hash/fnv"
	"strings"
)

// industryProfile carries the baseline market signals for a recognized
// industry segment.
type industryProfile struct {
	segment    string
	marketSize float64 // USD
	growthRate float64 // percent per year
}

// industryProfiles maps keyword fragments to market baselines. First
// match wins; matching scans the industry field, then the description.
var industryProfiles = []struct {
	keywords []string
	profile  industryProfile
}{
	{[]string{"ai", "artificial intelligence", "machine learning", "llm"},
		industryProfile{"artificial intelligence", 1.8e11, 28.0}},
	{[]string{"health", "medical", "wellness", "fitness"},
		industryProfile{"digital health", 6.5e10, 14.5}},
	{[]string{"fintech", "finance", "banking", "payments", "insurance"},
		industryProfile{"financial technology", 1.1e11, 16.8}},
	{[]string{"education", "learning", "edtech", "tutoring"},
		industryProfile{"education technology", 2.5e10, 12.3}},
	{[]string{"commerce", "retail", "marketplace", "shopping"},
		industryProfile{"e-commerce", 4.2e11, 9.4}},
	{[]string{"logistics", "delivery", "shipping", "supply chain"},
		industryProfile{"logistics technology", 3.4e10, 10.7}},
	{[]string{"real estate", "property", "housing"},
		industryProfile{"property technology", 1.9e10, 8.2}},
	{[]string{"travel", "tourism", "hospitality"},
		industryProfile{"travel technology", 1.2e10, 6.1}},
	{[]string{"gaming", "game", "esports"},
		industryProfile{"gaming", 2.2e11, 11.9}},
	{[]string{"climate", "energy", "sustainability", "carbon"},
		industryProfile{"climate technology", 5.5e10, 22.4}},
}

// defaultProfile is used when no industry keyword matches.
var defaultProfile = industryProfile{"general software", 8.0e9, 7.5}

// profileFor resolves the market baseline for an idea from its industry
// and description fields.
func profileFor(input map[string]any) industryProfile {
	haystacks := []string{
		strings.ToLower(stringField(input, "industry")),
		strings.ToLower(stringField(input, "description")),
	}
	for _, hay := range haystacks {
		if hay == "" {
			continue
		}
		for _, entry := range industryProfiles {
			for _, kw := range entry.keywords {
				if strings.Contains(hay, kw) {
					return entry.profile
				}
			}
		}
	}
	return defaultProfile
}

// ideaSeed hashes the idea's identifying fields to a stable seed used
// for bounded, repeatable variation.
func ideaSeed(input map[string]any) uint32 {
	h := fnv.New32a()
	h.Write([]byte(stringField(input, "name")))
	h.Write([]byte{0})
	h.Write([]byte(stringField(input, "description")))
	return h.Sum32()
}

// vary shifts base by up to ±spread, chosen deterministically from the
// seed and a per-signal salt.
func vary(seed uint32, salt string, base, spread float64) float64 {
	h := fnv.New32a()
	h.Write([]byte(salt))
	mixed := seed ^ h.Sum32()
	frac := float64(mixed%1000)/999.0*2 - 1 // -1..1
	return base + frac*spread
}

// pick selects an element deterministically from the seed and salt.
func pick[T any](seed uint32, salt string, choices []T) T {
	h := fnv.New32a()
	h.Write([]byte(salt))
	return choices[(seed^h.Sum32())%uint32(len(choices))]
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// hasIdea reports whether the input carries the minimum idea fields.
func hasIdea(input map[string]any) bool {
	return stringField(input, "name") != "" && stringField(input, "description") != ""
}

// errorEnvelope is the conventional failure payload.
func errorEnvelope(message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"message": message,
		"data":    nil,
	}
}

// successEnvelope wraps data in the conventional success payload.
func successEnvelope(message string, data map[string]any) map[string]any {
	return map[string]any{
		"status":  "success",
		"message": message,
		"data":    data,
	}
}
