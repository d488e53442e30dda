package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// ProceduralStrategy draws a simple schematic illustration of the baby's
// relative size as an SVG. It performs no I/O and only fails on an
// out-of-range week.
type ProceduralStrategy struct{}

func NewProceduralStrategy() *ProceduralStrategy { return &ProceduralStrategy{} }

func (s *ProceduralStrategy) ID() string { return model.StrategyProcedural }

func (s *ProceduralStrategy) Available() bool { return true }

func (s *ProceduralStrategy) Generate(_ context.Context, week int) (*model.ImageArtifact, error) {
	if !model.ValidWeek(week) {
		return nil, fmt.Errorf("week %d out of range", week)
	}
	svg := renderWeekSVG(week)
	encoded := base64.StdEncoding.EncodeToString([]byte(svg))
	return &model.ImageArtifact{
		Week:        week,
		Strategy:    model.StrategyProcedural,
		Payload:     "data:image/svg+xml;base64," + encoded,
		MediaType:   "image/svg+xml",
		SourceLabel: "procedural illustration",
		Available:   true,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// renderWeekSVG produces a 400x400 schematic: a silhouette scaled to the
// week with the comparison label and weight underneath.
func renderWeekSVG(week int) string {
	size := knowledge.SizeForWeek(week)

	// Radius grows roughly with gestational age, clamped so the shape
	// stays inside the canvas.
	radius := 8 + week*3
	if radius > 130 {
		radius = 130
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">`)
	b.WriteString(`<rect width="400" height="400" fill="#f8f9fa"/>`)
	switch {
	case week <= 12:
		fmt.Fprintf(&b, `<circle cx="200" cy="180" r="%d" fill="#ffb3ba" stroke="#ff6b6b" stroke-width="2"/>`, radius)
	case week <= 26:
		fmt.Fprintf(&b, `<ellipse cx="200" cy="180" rx="%d" ry="%d" fill="#ffb3ba" stroke="#ff6b6b" stroke-width="2"/>`, radius, radius*4/3)
		b.WriteString(`<circle cx="200" cy="120" r="28" fill="#ffb3ba" stroke="#ff6b6b" stroke-width="2"/>`)
	default:
		fmt.Fprintf(&b, `<ellipse cx="200" cy="190" rx="%d" ry="%d" fill="#ffb3ba" stroke="#ff6b6b" stroke-width="2"/>`, radius, radius*5/4)
		b.WriteString(`<circle cx="200" cy="100" r="36" fill="#ffb3ba" stroke="#ff6b6b" stroke-width="2"/>`)
	}
	fmt.Fprintf(&b, `<text x="200" y="330" text-anchor="middle" font-family="sans-serif" font-size="20" fill="#333333">Week %d</text>`, week)
	fmt.Fprintf(&b, `<text x="200" y="358" text-anchor="middle" font-family="sans-serif" font-size="15" fill="#333333">Size of a %s</text>`, size.Comparison)
	if size.Weight != "" {
		fmt.Fprintf(&b, `<text x="200" y="382" text-anchor="middle" font-family="sans-serif" font-size="13" fill="#666666">%s</text>`, size.Weight)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
