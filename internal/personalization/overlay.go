package personalization

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// NoteRewriter rewrites a rule-generated note into warmer prose using the
// assembled context. Implementations must be safe for concurrent use.
type NoteRewriter interface {
	RewriteNote(ctx context.Context, contextBlock, note string) (string, error)
}

// OpenAIRewriter backs the overlay with a chat completion model.
type OpenAIRewriter struct {
	client *openai.Client
	model  string
}

func NewOpenAIRewriter(apiKey, chatModel string) *OpenAIRewriter {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &OpenAIRewriter{
		client: openai.NewClient(apiKey),
		model:  chatModel,
	}
}

const overlaySystemPrompt = "You are a prenatal health assistant. Rewrite the note below in a warm, " +
	"clear tone for the patient. Keep every medical fact and recommendation " +
	"unchanged. Do not add new medical claims. Answer with the rewritten note only."

func (r *OpenAIRewriter) RewriteNote(ctx context.Context, contextBlock, note string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: overlaySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Context:\n" + contextBlock + "\n\nNote:\n" + note},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// applyOverlay rewrites a note best-effort. Any failure or empty answer
// leaves the rule-based note untouched.
func (e *Engine) applyOverlay(ctx context.Context, record *model.WeekRecord, profile model.PatientProfile, note string) string {
	overlayCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rewritten, err := e.overlay.RewriteNote(overlayCtx, buildContextSummary(record, profile, nil), note)
	if err != nil {
		e.logger.Warn().Err(err).Int("week", record.Week).Msg("note overlay failed, keeping rule-based note")
		return note
	}
	if rewritten == "" {
		return note
	}
	return rewritten
}
