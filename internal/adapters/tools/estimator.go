// Package tools provides rule-based supporting tools for the validation
// pipelines.
package tools

import (
	"context"
	"math"
	"strings"

	"github.com/ideavet/ideavet/internal/core"
	"github.com/ideavet/ideavet/internal/logging"
)

// Complexity levels recognized by the estimator.
const (
	ComplexityLow      = "low"
	ComplexityMedium   = "medium"
	ComplexityHigh     = "high"
	ComplexityVeryHigh = "very_high"
)

// baseHours maps complexity to the base build effort in hours.
var baseHours = map[string]float64{
	ComplexityLow:      40,
	ComplexityMedium:   80,
	ComplexityHigh:     160,
	ComplexityVeryHigh: 320,
}

// techMultipliers adjust effort for the chosen stack. Unknown
// technologies contribute the neutral 1.0.
var techMultipliers = map[string]float64{
	"react":              1.0,
	"vue":                1.0,
	"angular":            1.1,
	"flutter":            1.2,
	"react_native":       1.2,
	"node_js":            1.0,
	"django":             1.0,
	"flask":              0.9,
	"rails":              1.0,
	"postgresql":         1.0,
	"mysql":              0.9,
	"sqlite":             0.7,
	"mongodb":            1.0,
	"firebase":           0.9,
	"aws":                1.1,
	"gcp":                1.1,
	"heroku":             0.8,
	"ai_integration":     1.4,
	"payment_processing": 1.2,
	"realtime_features":  1.3,
}

const blendedHourlyRate = 60.0 // USD, cross-role average

// MVPEstimator estimates build time and cost for a feature set. Bad
// input is reported through the {status:"error", message} convention
// rather than a Go error.
type MVPEstimator struct {
	costMultiplier float64
	logger         *logging.Logger
}

// NewMVPEstimator creates the estimator. The cost multiplier adjusts
// for regional rates (1.0 = US average).
func NewMVPEstimator(costMultiplier float64, logger *logging.Logger) *MVPEstimator {
	if costMultiplier <= 0 {
		costMultiplier = 1.0
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MVPEstimator{
		costMultiplier: costMultiplier,
		logger:         logger.WithCollaborator("mvp_estimator"),
	}
}

func (t *MVPEstimator) Name() string { return "mvp_estimator" }

// Run estimates from args: "features" (list of feature mappings, each
// optionally carrying a "complexity"), "tech_stack" (list of technology
// names), and optional "complexity" overriding the derived overall level.
func (t *MVPEstimator) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := listArg(args, "features")
	if len(features) == 0 {
		return map[string]any{
			"status":  "error",
			"message": "no features provided",
		}, nil
	}
	techStack := stringListArg(args, "tech_stack")

	complexity := t.overallComplexity(features, args)
	multiplier := t.techMultiplier(techStack)

	// Features are smaller than a whole build; each contributes a
	// quarter of its complexity's base effort.
	totalHours := 0.0
	featureEstimates := make([]any, 0, len(features))
	for _, raw := range features {
		f, _ := raw.(map[string]any)
		fc := featureComplexity(f, complexity)
		hours := baseHours[fc] / 4 * multiplier
		totalHours += hours
		featureEstimates = append(featureEstimates, map[string]any{
			"name":       featureName(f),
			"complexity": fc,
			"hours":      round1(hours),
		})
	}

	laborCost := totalHours * blendedHourlyRate * t.costMultiplier
	minCost := roundHundred(laborCost)
	maxCost := roundHundred(laborCost*1.15 + math.Max(500, laborCost*0.05))

	weeks := round1(totalHours/40 + bufferWeeks(totalHours))

	t.logger.Debug("mvp estimated",
		"features", len(features), "complexity", complexity,
		"hours", totalHours, "weeks", weeks)

	return map[string]any{
		"status":             "success",
		"overall_complexity": complexity,
		"total_hours":        round1(totalHours),
		"development_time": map[string]any{
			"weeks":  weeks,
			"months": round1(weeks / 4.33),
		},
		"cost_estimate": map[string]any{
			"min":      minCost,
			"max":      maxCost,
			"currency": "USD",
		},
		"feature_estimates": featureEstimates,
	}, nil
}

// Ping reports availability for the doctor command.
func (t *MVPEstimator) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (t *MVPEstimator) overallComplexity(features []any, args map[string]any) string {
	if c, ok := args["complexity"].(string); ok {
		if _, known := baseHours[c]; known {
			return c
		}
	}
	score := 0.0
	for _, raw := range features {
		f, _ := raw.(map[string]any)
		switch featureComplexity(f, ComplexityMedium) {
		case ComplexityLow:
			score++
		case ComplexityMedium:
			score += 2
		case ComplexityHigh:
			score += 3
		default:
			score += 4
		}
	}
	avg := score / float64(len(features))
	switch {
	case avg < 1.5:
		return ComplexityLow
	case avg < 2.5:
		return ComplexityMedium
	case avg < 3.5:
		return ComplexityHigh
	default:
		return ComplexityVeryHigh
	}
}

func (t *MVPEstimator) techMultiplier(stack []string) float64 {
	total, known := 0.0, 0
	for _, tech := range stack {
		key := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(tech))
		if m, ok := techMultipliers[key]; ok {
			total += m
			known++
		}
	}
	if known == 0 {
		return 1.0
	}
	avg := total / float64(known)
	// Larger stacks carry coordination overhead.
	sizeFactor := 1.0 + math.Min(float64(len(stack)-1), 5)*0.03
	return avg * sizeFactor
}

func featureComplexity(f map[string]any, fallback string) string {
	if f == nil {
		return fallback
	}
	if c, ok := f["complexity"].(string); ok {
		if _, known := baseHours[c]; known {
			return c
		}
	}
	return fallback
}

func featureName(f map[string]any) string {
	if f == nil {
		return "unnamed feature"
	}
	if name, ok := f["name"].(string); ok && name != "" {
		return name
	}
	return "unnamed feature"
}

func bufferWeeks(totalHours float64) float64 {
	switch weeks := totalHours / 40; {
	case weeks < 4:
		return 1
	case weeks < 8:
		return 2
	default:
		return 3
	}
}

func listArg(args map[string]any, key string) []any {
	switch v := args[key].(type) {
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

func stringListArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundHundred(v float64) float64 {
	return math.Round(v/100) * 100
}

var (
	_ core.Tool   = (*MVPEstimator)(nil)
	_ core.Pinger = (*MVPEstimator)(nil)
)
