package core

import "time"

// ReportStatus describes how a validation run ended.
type ReportStatus string

const (
	// ReportCompleted means every stage ran and the report was synthesized.
	ReportCompleted ReportStatus = "completed"

	// ReportInterim means a human halted the pipeline before MVP planning.
	// An interim report is a success, not an error.
	ReportInterim ReportStatus = "interim"

	// ReportFailed means a stage failed and the pipeline stopped advancing.
	ReportFailed ReportStatus = "failed"
)

// ValidationReport is the final output aggregate of a validation pipeline.
// Partial variants carry exactly the payloads collected from completed
// stages; absent stages leave their fields nil.
type ValidationReport struct {
	Success            bool             `json:"success"`
	Status             ReportStatus     `json:"status"`
	Error              string           `json:"error,omitempty"`
	Message            string           `json:"message,omitempty"`
	Idea               StartupIdea      `json:"idea"`
	MarketAnalysis     map[string]any   `json:"market_analysis,omitempty"`
	CompetitorAnalysis map[string]any   `json:"competitor_analysis,omitempty"`
	CustomerPersonas   []map[string]any `json:"customer_personas,omitempty"`
	MVPPlan            map[string]any   `json:"mvp_plan,omitempty"`
	Recommendations    []string         `json:"recommendations,omitempty"`
	ValidationScore    *float64         `json:"validation_score,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
}

// NewFailedReport builds an error report with whatever stage payloads were
// collected before the failure. Later-stage fields stay empty.
func NewFailedReport(errMsg string, idea *StartupIdea, market, competitor, persona map[string]any) *ValidationReport {
	return &ValidationReport{
		Success:            false,
		Status:             ReportFailed,
		Error:              errMsg,
		Idea:               *idea,
		MarketAnalysis:     market,
		CompetitorAnalysis: competitor,
		CustomerPersonas:   PersonasFrom(persona),
		Timestamp:          time.Now(),
	}
}

// NewInterimReport builds the report returned when a human stops the
// pipeline before MVP planning. It is a success with no mvp stage at all.
func NewInterimReport(idea *StartupIdea, market, competitor, persona map[string]any) *ValidationReport {
	return &ValidationReport{
		Success:            true,
		Status:             ReportInterim,
		Message:            "MVP planning was skipped due to user request",
		Idea:               *idea,
		MarketAnalysis:     market,
		CompetitorAnalysis: competitor,
		CustomerPersonas:   PersonasFrom(persona),
		Timestamp:          time.Now(),
	}
}

// PersonasFrom extracts the persona list from a persona stage payload.
// Returns nil when the payload is absent or carries no personas.
func PersonasFrom(payload map[string]any) []map[string]any {
	if payload == nil {
		return nil
	}
	raw, ok := payload["personas"]
	if !ok {
		return nil
	}
	switch list := raw.(type) {
	case []map[string]any:
		return list
	case []any:
		personas := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				personas = append(personas, m)
			}
		}
		if len(personas) == 0 {
			return nil
		}
		return personas
	default:
		return nil
	}
}

// MarketOnlyReport is the simplified output of the market_only workflow.
// It carries no score and no recommendations.
type MarketOnlyReport struct {
	Idea           StartupIdea    `json:"idea"`
	MarketAnalysis map[string]any `json:"market_analysis"`
	Timestamp      time.Time      `json:"timestamp"`
}

// MVPOnlyReport is the simplified output of the mvp_only workflow.
type MVPOnlyReport struct {
	Idea      StartupIdea    `json:"idea"`
	MVPPlan   map[string]any `json:"mvp_plan"`
	Timestamp time.Time      `json:"timestamp"`
}

// PipelineError is the structured failure value returned by partial
// pipelines when preconditions fail or their single stage fails.
type PipelineError struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}
