// Package qdrantclient is a minimal REST client for the Qdrant points API,
// covering only the operations the knowledge store needs: collection
// bootstrap, upsert, filtered search, scroll and count.
package qdrantclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Point is a stored vector with its payload.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ScoredPoint is a search hit.
type ScoredPoint struct {
	ID      string                 `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// Filter restricts a search or scroll to matching payload fields.
type Filter struct {
	Must []FieldMatch `json:"must,omitempty"`
}

// FieldMatch is an exact-match condition on an indexed payload field.
type FieldMatch struct {
	Key   string     `json:"key"`
	Match MatchValue `json:"match"`
}

type MatchValue struct {
	Value interface{} `json:"value"`
}

// MatchInt builds an exact integer match condition.
func MatchInt(key string, value int) FieldMatch {
	return FieldMatch{Key: key, Match: MatchValue{Value: value}}
}

// EnsureCollection creates the collection and its payload indexes if the
// collection does not exist yet. Existing collections are left untouched.
func (c *Client) EnsureCollection(ctx context.Context, name string, vectorSize int, indexFields []string) error {
	status, _, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	if status, raw, err := c.do(ctx, http.MethodPut, "/collections/"+name, body); err != nil {
		return err
	} else if status >= 300 {
		return fmt.Errorf("failed to create collection %s: status %d: %s", name, status, raw)
	}

	for _, field := range indexFields {
		idx := map[string]interface{}{
			"field_name":   field,
			"field_schema": "integer",
		}
		if status, raw, err := c.do(ctx, http.MethodPut, "/collections/"+name+"/index", idx); err != nil {
			return err
		} else if status >= 300 {
			return fmt.Errorf("failed to index field %s: status %d: %s", field, status, raw)
		}
	}
	return nil
}

// Upsert writes points, replacing any existing points with the same IDs.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	body := map[string]interface{}{"points": points}
	status, raw, err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("upsert failed: status %d: %s", status, raw)
	}
	return nil
}

// Search runs a cosine-similarity query, optionally filtered.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, filter *Filter) ([]ScoredPoint, error) {
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil {
		body["filter"] = filter
	}
	status, raw, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("search failed: status %d: %s", status, raw)
	}
	var resp struct {
		Result []ScoredPoint `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return resp.Result, nil
}

// Scroll fetches points matching a filter without similarity ranking.
func (c *Client) Scroll(ctx context.Context, collection string, filter *Filter, limit int) ([]Point, error) {
	body := map[string]interface{}{
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil {
		body["filter"] = filter
	}
	status, raw, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/scroll", body)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("scroll failed: status %d: %s", status, raw)
	}
	var resp struct {
		Result struct {
			Points []Point `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode scroll response: %w", err)
	}
	return resp.Result.Points, nil
}

// Count returns the exact number of points in the collection.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	body := map[string]interface{}{"exact": true}
	status, raw, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/count", body)
	if err != nil {
		return 0, err
	}
	if status >= 300 {
		return 0, fmt.Errorf("count failed: status %d: %s", status, raw)
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return resp.Result.Count, nil
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant ping failed: status %d", status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
