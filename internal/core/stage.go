package core

import "fmt"

// Stage represents one collaborator invocation within a validation pipeline.
type Stage string

const (
	// StageMarket researches market size, growth, and trends for the idea.
	StageMarket Stage = "market"

	// StageCompetitor identifies competitors and market gaps.
	StageCompetitor Stage = "competitor"

	// StagePersona builds customer personas from the idea and market data.
	StagePersona Stage = "persona"

	// StageMVP plans the minimum viable product.
	// In the full pipeline it runs only after the optional human gate.
	StageMVP Stage = "mvp"
)

// AllStages returns all stages in execution order.
func AllStages() []Stage {
	return []Stage{StageMarket, StageCompetitor, StagePersona, StageMVP}
}

// StageOrder returns the numeric order of a stage (0-indexed).
func StageOrder(s Stage) int {
	switch s {
	case StageMarket:
		return 0
	case StageCompetitor:
		return 1
	case StagePersona:
		return 2
	case StageMVP:
		return 3
	default:
		return -1
	}
}

// NextStage returns the stage following the given stage.
// Returns empty string if the stage is the last.
func NextStage(s Stage) Stage {
	switch s {
	case StageMarket:
		return StageCompetitor
	case StageCompetitor:
		return StagePersona
	case StagePersona:
		return StageMVP
	default:
		return ""
	}
}

// ValidStage checks if a stage string is valid.
func ValidStage(s Stage) bool {
	switch s {
	case StageMarket, StageCompetitor, StagePersona, StageMVP:
		return true
	default:
		return false
	}
}

// ParseStage converts a string to a Stage with validation.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !ValidStage(st) {
		return "", fmt.Errorf("invalid stage: %s", s)
	}
	return st, nil
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Description returns a human-readable description of the stage.
func (s Stage) Description() string {
	switch s {
	case StageMarket:
		return "Research market trends, size, and growth"
	case StageCompetitor:
		return "Analyze competitors and identify market gaps"
	case StagePersona:
		return "Generate customer personas"
	case StageMVP:
		return "Plan the minimum viable product"
	default:
		return "Unknown stage"
	}
}
