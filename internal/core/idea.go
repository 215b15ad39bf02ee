package core

import "fmt"

// StartupIdea is the structured input to every validation pipeline.
// It is parsed once at pipeline start and immutable thereafter.
type StartupIdea struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	TargetAudience   string `json:"target_audience,omitempty"`
	Industry         string `json:"industry,omitempty"`
	ProblemStatement string `json:"problem_statement,omitempty"`
	Solution         string `json:"solution,omitempty"`
	RevenueModel     string `json:"revenue_model,omitempty"`
	InitialThoughts  string `json:"initial_thoughts,omitempty"`
}

// Validate checks the idea invariants.
func (i *StartupIdea) Validate() error {
	if i.Name == "" {
		return ErrValidation(CodeInvalidIdea, "idea name cannot be empty")
	}
	if i.Description == "" {
		return ErrValidation(CodeInvalidIdea, "idea description cannot be empty")
	}
	return nil
}

// AsMap converts the idea to a generic mapping for collaborator input.
func (i *StartupIdea) AsMap() map[string]any {
	m := map[string]any{
		"name":        i.Name,
		"description": i.Description,
	}
	if i.TargetAudience != "" {
		m["target_audience"] = i.TargetAudience
	}
	if i.Industry != "" {
		m["industry"] = i.Industry
	}
	if i.ProblemStatement != "" {
		m["problem_statement"] = i.ProblemStatement
	}
	if i.Solution != "" {
		m["solution"] = i.Solution
	}
	if i.RevenueModel != "" {
		m["revenue_model"] = i.RevenueModel
	}
	if i.InitialThoughts != "" {
		m["initial_thoughts"] = i.InitialThoughts
	}
	return m
}

// ParseIdea extracts a StartupIdea from pipeline input.
// The idea may be nested under an "idea" key or spread across root-level
// keys. A malformed idea fails before any stage runs.
func ParseIdea(input map[string]any) (*StartupIdea, error) {
	if input == nil {
		return nil, ErrValidation(CodeInvalidIdea, "input cannot be nil")
	}

	source := input
	if nested, ok := input["idea"]; ok {
		m, ok := nested.(map[string]any)
		if !ok {
			return nil, ErrValidation(CodeInvalidIdea,
				fmt.Sprintf("idea must be a mapping, got %T", nested))
		}
		source = m
	}

	idea := &StartupIdea{
		Name:             stringField(source, "name"),
		Description:      stringField(source, "description"),
		TargetAudience:   stringField(source, "target_audience"),
		Industry:         stringField(source, "industry"),
		ProblemStatement: stringField(source, "problem_statement"),
		Solution:         stringField(source, "solution"),
		RevenueModel:     stringField(source, "revenue_model"),
		InitialThoughts:  stringField(source, "initial_thoughts"),
	}
	if err := idea.Validate(); err != nil {
		return nil, err
	}
	return idea, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
