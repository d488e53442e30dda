package imaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// TextStrategy is the terminal strategy of the cascade. It renders a
// structured textual description of the week's size comparison and never
// fails, so the cascade can always return something.
type TextStrategy struct{}

func NewTextStrategy() *TextStrategy { return &TextStrategy{} }

func (s *TextStrategy) ID() string { return model.StrategyText }

func (s *TextStrategy) Available() bool { return true }

func (s *TextStrategy) Generate(_ context.Context, week int) (*model.ImageArtifact, error) {
	size := knowledge.SizeForWeek(week)
	payload, err := json.Marshal(map[string]any{
		"week":        week,
		"trimester":   model.TrimesterForWeek(week),
		"comparison":  size.Comparison,
		"weight":      size.Weight,
		"length":      size.Length,
		"description": fmt.Sprintf("At week %d your baby is about the size of a %s.", week, size.Comparison),
	})
	if err != nil {
		// Marshalling a map of scalars cannot fail; keep the terminal
		// strategy infallible regardless.
		payload = []byte(fmt.Sprintf(`{"week":%d,"comparison":%q}`, week, size.Comparison))
	}
	return &model.ImageArtifact{
		Week:        week,
		Strategy:    model.StrategyText,
		Payload:     string(payload),
		MediaType:   "application/json",
		SourceLabel: "structured text description",
		Available:   true,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
