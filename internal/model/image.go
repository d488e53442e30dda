package model

import "time"

// Image synthesis strategy identifiers, in fallback priority order.
const (
	StrategyGenerative = "generative"
	StrategyPhoto      = "photo"
	StrategyProcedural = "procedural"
	StrategyText       = "text"
)

// StrategyFallbackOrder is the fixed order GetBest walks after the
// preferred strategy. The text strategy is terminal and cannot fail.
var StrategyFallbackOrder = []string{
	StrategyGenerative,
	StrategyPhoto,
	StrategyProcedural,
	StrategyText,
}

// ImageArtifact is one rendered size-comparison illustration for a week.
// Payload is either an encoded image (data URL) or structured text,
// depending on MediaType.
type ImageArtifact struct {
	Week        int       `json:"week"`
	Strategy    string    `json:"strategy"`
	Payload     string    `json:"payload"`
	MediaType   string    `json:"media_type"`
	SourceLabel string    `json:"source"`
	Available   bool      `json:"available"`
	GeneratedAt time.Time `json:"generated_at"`
}

// StrategyResult reports one strategy's outcome in a diagnostic map.
// Exactly one of Artifact or Err is set.
type StrategyResult struct {
	Artifact *ImageArtifact `json:"artifact,omitempty"`
	Err      string         `json:"error,omitempty"`
}
