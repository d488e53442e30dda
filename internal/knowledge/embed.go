package knowledge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingDim is the vector size of the collection. The OpenAI embedder
// requests reduced dimensions to match; the hashing embedder produces this
// size natively.
const EmbeddingDim = 384

// Embedder turns text into a fixed-length vector for similarity search.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

// OpenAIEmbedder computes embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (e *OpenAIEmbedder) Dim() int { return EmbeddingDim }

func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: EmbeddingDim,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return resp.Data[0].Embedding, nil
}

// HashingEmbedder is a deterministic bag-of-words embedder used when no
// API credential is configured and in tests. Vectors are L2-normalized so
// cosine scores stay comparable with the remote embedder's.
type HashingEmbedder struct {
	dim int
}

func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{dim: EmbeddingDim}
}

func (e *HashingEmbedder) Dim() int { return e.dim }

func (e *HashingEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,:;!?-()")
		if word == "" || hashingStopWords[word] {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		idx := int(h.Sum32() % uint32(e.dim))
		vec[idx]++
	}

	var sumSq float32
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq > 0 {
		norm := float32(1.0 / math.Sqrt(float64(sumSq)))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

var hashingStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "your": true, "this": true, "that": true, "at": true,
	"by": true, "as": true, "be": true, "it": true, "its": true,
}
