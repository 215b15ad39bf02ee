package report

import (
	"time"

	"github.com/ideavet/ideavet/internal/core"
)

// Synthesize assembles the completed validation report from the four
// stage payloads: score, recommendations, and the collected analyses.
func Synthesize(idea *core.StartupIdea, market, competitor, persona, mvp map[string]any) *core.ValidationReport {
	data := &StageData{
		Market:     market,
		Competitor: competitor,
		Personas:   core.PersonasFrom(persona),
		MVP:        mvp,
	}
	score := Score(data)
	return &core.ValidationReport{
		Success:            true,
		Status:             core.ReportCompleted,
		Idea:               *idea,
		MarketAnalysis:     market,
		CompetitorAnalysis: competitor,
		CustomerPersonas:   data.Personas,
		MVPPlan:            mvp,
		Recommendations:    Recommend(data),
		ValidationScore:    &score,
		Timestamp:          time.Now(),
	}
}
