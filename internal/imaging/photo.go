package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// maxPhotoBytes bounds a fetched photo so a misbehaving source cannot
// balloon the cache.
const maxPhotoBytes = 4 << 20

// PhotoStrategy serves a stock photograph of the fruit or vegetable the
// baby is compared to this week, fetched from a configured base URL and
// cached in process so each photo is downloaded at most once.
type PhotoStrategy struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	photos map[string]string
}

func NewPhotoStrategy(baseURL string, timeout time.Duration) *PhotoStrategy {
	return &PhotoStrategy{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		photos:  make(map[string]string),
	}
}

func (s *PhotoStrategy) ID() string { return model.StrategyPhoto }

func (s *PhotoStrategy) Available() bool { return s.baseURL != "" }

func (s *PhotoStrategy) Generate(ctx context.Context, week int) (*model.ImageArtifact, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("photo source not configured")
	}
	size := knowledge.SizeForWeek(week)
	slug := photoSlug(size.Comparison)

	dataURL, err := s.fetch(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo for %q: %w", size.Comparison, err)
	}
	return &model.ImageArtifact{
		Week:        week,
		Strategy:    model.StrategyPhoto,
		Payload:     dataURL,
		MediaType:   "image/jpeg",
		SourceLabel: "stock photo: " + size.Comparison,
		Available:   true,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *PhotoStrategy) fetch(ctx context.Context, slug string) (string, error) {
	s.mu.Lock()
	cached, ok := s.photos[slug]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/%s.jpg", s.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("photo source returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read photo body: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("photo source returned empty body")
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(body)
	s.mu.Lock()
	s.photos[slug] = dataURL
	s.mu.Unlock()
	return dataURL, nil
}

// photoSlug maps a comparison label like "Bell pepper" to the file name
// convention of the photo source.
func photoSlug(comparison string) string {
	slug := strings.ToLower(comparison)
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
