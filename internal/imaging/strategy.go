// Package imaging synthesizes size-comparison illustrations for pregnancy
// weeks through a cascade of independent strategies with caching and
// graceful degradation.
package imaging

import (
	"context"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// Strategy is one way of producing a week illustration. Strategies are
// independent: one failing never affects another.
type Strategy interface {
	// ID returns the stable strategy identifier used in cache keys,
	// diagnostics and the preferred-strategy request parameter.
	ID() string
	// Generate produces an artifact for the week or fails.
	Generate(ctx context.Context, week int) (*model.ImageArtifact, error)
	// Available reports whether the strategy's dependency is configured
	// and usable right now.
	Available() bool
}
