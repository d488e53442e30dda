package imaging

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

func TestTextStrategy(t *testing.T) {
	artifact, err := NewTextStrategy().Generate(context.Background(), 20)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(artifact.Payload), &payload))
	assert.Equal(t, float64(20), payload["week"])
	assert.Equal(t, float64(2), payload["trimester"])
	assert.NotEmpty(t, payload["comparison"])
	assert.Contains(t, payload["description"], "week 20")
}

func TestProceduralStrategy(t *testing.T) {
	s := NewProceduralStrategy()

	artifact, err := s.Generate(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", artifact.MediaType)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(artifact.Payload, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	svg := string(raw)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Week 8")
	assert.Contains(t, svg, "Size of a")

	_, err = s.Generate(context.Background(), 0)
	assert.Error(t, err)
}

func TestPhotoStrategyFetchesAndCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.True(t, strings.HasSuffix(r.URL.Path, ".jpg"))
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	s := NewPhotoStrategy(server.URL, time.Second)

	first, err := s.Generate(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, model.StrategyPhoto, first.Strategy)
	assert.True(t, strings.HasPrefix(first.Payload, "data:image/jpeg;base64,"))

	_, err = s.Generate(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 1, requests, "same comparison must be fetched once")
}

func TestPhotoStrategyErrorStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewPhotoStrategy(server.URL, time.Second)
	_, err := s.Generate(context.Background(), 20)
	assert.Error(t, err)

	unconfigured := NewPhotoStrategy("", time.Second)
	assert.False(t, unconfigured.Available())
	_, err = unconfigured.Generate(context.Background(), 20)
	assert.Error(t, err)
}

type stubGenerator struct {
	b64 string
	err error
}

func (g *stubGenerator) GenerateImage(context.Context, string) (string, error) {
	return g.b64, g.err
}

func TestGenerativeStrategy(t *testing.T) {
	s := NewGenerativeStrategy(&stubGenerator{b64: "aW1hZ2U="})
	assert.True(t, s.Available())

	artifact, err := s.Generate(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aW1hZ2U=", artifact.Payload)
	assert.Equal(t, model.StrategyGenerative, artifact.Strategy)
}

func TestGenerativeStrategyWithoutCredentials(t *testing.T) {
	s := NewGenerativeStrategy(nil)
	assert.False(t, s.Available())

	_, err := s.Generate(context.Background(), 20)
	assert.Error(t, err)
}

func TestPhotoSlug(t *testing.T) {
	assert.Equal(t, "bell-pepper", photoSlug("Bell pepper"))
	assert.Equal(t, "watermelon", photoSlug("Watermelon"))
}
