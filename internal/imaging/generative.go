package imaging

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// ImageGenerator abstracts the text-to-image backend so tests can count
// invocations without network access.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (b64 string, err error)
}

// OpenAIImageGenerator renders prompts through the OpenAI images API.
type OpenAIImageGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIImageGenerator(apiKey, model string) *OpenAIImageGenerator {
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIImageGenerator{client: openai.NewClient(apiKey), model: model}
}

func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("image response contained no data")
	}
	return resp.Data[0].B64JSON, nil
}

// GenerativeStrategy produces a bespoke illustration with a text-to-image
// model. It is the highest-quality and least reliable strategy, so it sits
// first in the fallback order.
type GenerativeStrategy struct {
	generator ImageGenerator
}

// NewGenerativeStrategy accepts a nil generator, in which case the
// strategy reports itself unavailable and fails fast.
func NewGenerativeStrategy(generator ImageGenerator) *GenerativeStrategy {
	return &GenerativeStrategy{generator: generator}
}

func (s *GenerativeStrategy) ID() string { return model.StrategyGenerative }

func (s *GenerativeStrategy) Available() bool { return s.generator != nil }

func (s *GenerativeStrategy) Generate(ctx context.Context, week int) (*model.ImageArtifact, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("image generation credentials not configured")
	}
	size := knowledge.SizeForWeek(week)
	prompt := fmt.Sprintf(
		"A soft, warm medical illustration of fetal development at pregnancy week %d. "+
			"The baby is about the size of a %s. Gentle pastel colors, suitable for a prenatal care app, no text.",
		week, size.Comparison)

	b64, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate illustration: %w", err)
	}
	return &model.ImageArtifact{
		Week:        week,
		Strategy:    model.StrategyGenerative,
		Payload:     "data:image/png;base64," + b64,
		MediaType:   "image/png",
		SourceLabel: "generated illustration",
		Available:   true,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
