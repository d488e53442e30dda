// Package knowledge implements the vector-backed store of weekly pregnancy
// reference records: indexing, point lookups and filtered semantic search.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge/qdrantclient"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

// weekNamespace seeds the deterministic point ID for each week, so that
// re-indexing a week overwrites the existing point instead of adding one.
var weekNamespace = uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341")

// Filter narrows a search to one week or one trimester.
type Filter struct {
	Week      *int
	Trimester *int
}

// Health is the store's operational status.
type Health struct {
	Reachable   bool `json:"reachable"`
	RecordCount int  `json:"record_count"`
}

// Store indexes weekly reference records in a vector collection and
// answers point lookups and similarity queries over them.
type Store struct {
	client     *qdrantclient.Client
	collection string
	embedder   Embedder
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewStore(client *qdrantclient.Client, collection string, embedder Embedder, m *metrics.Metrics, logger zerolog.Logger) *Store {
	return &Store{
		client:     client,
		collection: collection,
		embedder:   embedder,
		metrics:    m,
		logger:     logger.With().Str("component", "knowledge_store").Logger(),
	}
}

// EnsureCollection creates the collection with integer payload indexes on
// week and trimester if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context) error {
	if err := s.client.EnsureCollection(ctx, s.collection, s.embedder.Dim(), []string{"week", "trimester"}); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert indexes a week record, replacing any previous record for the same
// week.
func (s *Store) Upsert(ctx context.Context, record model.WeekRecord) error {
	if !model.ValidWeek(record.Week) {
		return apperror.InvalidInput("week must be between %d and %d, got %d", model.MinWeek, model.MaxWeek, record.Week)
	}
	record.Normalize()

	text := CanonicalText(record)
	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.metrics.VectorStoreOps.WithLabelValues("upsert", "error").Inc()
		return apperror.Unavailable(err, "failed to embed week %d", record.Week)
	}

	payload, err := recordPayload(record, text)
	if err != nil {
		return fmt.Errorf("failed to build payload for week %d: %w", record.Week, err)
	}

	point := qdrantclient.Point{
		ID:      pointIDForWeek(record.Week),
		Vector:  vector,
		Payload: payload,
	}
	if err := s.client.Upsert(ctx, s.collection, []qdrantclient.Point{point}); err != nil {
		s.metrics.VectorStoreOps.WithLabelValues("upsert", "error").Inc()
		return apperror.Unavailable(err, "failed to index week %d", record.Week)
	}

	s.metrics.VectorStoreOps.WithLabelValues("upsert", "ok").Inc()
	s.logger.Info().Int("week", record.Week).Msg("indexed week record")
	return nil
}

// GetByWeek returns the canonical record for a week.
func (s *Store) GetByWeek(ctx context.Context, week int) (*model.WeekRecord, error) {
	if !model.ValidWeek(week) {
		return nil, apperror.InvalidInput("week must be between %d and %d, got %d", model.MinWeek, model.MaxWeek, week)
	}

	filter := &qdrantclient.Filter{Must: []qdrantclient.FieldMatch{qdrantclient.MatchInt("week", week)}}
	points, err := s.client.Scroll(ctx, s.collection, filter, 1)
	if err != nil {
		s.metrics.VectorStoreOps.WithLabelValues("get_by_week", "error").Inc()
		return nil, apperror.Unavailable(err, "failed to fetch week %d", week)
	}
	if len(points) == 0 {
		s.metrics.VectorStoreOps.WithLabelValues("get_by_week", "miss").Inc()
		return nil, apperror.NotFound("week %d has not been indexed", week)
	}

	record, err := decodeRecord(points[0].Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode week %d: %w", week, err)
	}
	s.metrics.VectorStoreOps.WithLabelValues("get_by_week", "ok").Inc()
	return record, nil
}

// Search runs a similarity query and returns scored records, best first.
// An empty result is not an error.
func (s *Store) Search(ctx context.Context, query string, limit int, filter *Filter) ([]model.ScoredWeek, error) {
	if limit <= 0 {
		limit = 5
	}
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to embed query")
	}

	var qf *qdrantclient.Filter
	if filter != nil {
		var must []qdrantclient.FieldMatch
		if filter.Week != nil {
			must = append(must, qdrantclient.MatchInt("week", *filter.Week))
		}
		if filter.Trimester != nil {
			must = append(must, qdrantclient.MatchInt("trimester", *filter.Trimester))
		}
		if len(must) > 0 {
			qf = &qdrantclient.Filter{Must: must}
		}
	}

	hits, err := s.client.Search(ctx, s.collection, vector, limit, qf)
	if err != nil {
		s.metrics.VectorStoreOps.WithLabelValues("search", "error").Inc()
		return nil, apperror.Unavailable(err, "search failed")
	}

	results := make([]model.ScoredWeek, 0, len(hits))
	for _, hit := range hits {
		record, err := decodeRecord(hit.Payload)
		if err != nil {
			s.logger.Warn().Err(err).Str("point_id", hit.ID).Msg("skipping undecodable search hit")
			continue
		}
		results = append(results, model.ScoredWeek{Score: hit.Score, Record: *record})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	s.metrics.VectorStoreOps.WithLabelValues("search", "ok").Inc()
	return results, nil
}

// GetByTrimester returns every indexed week of a trimester, ascending by
// week.
func (s *Store) GetByTrimester(ctx context.Context, trimester int) ([]model.WeekRecord, error) {
	if !model.ValidTrimester(trimester) {
		return nil, apperror.InvalidInput("trimester must be 1, 2 or 3, got %d", trimester)
	}

	filter := &qdrantclient.Filter{Must: []qdrantclient.FieldMatch{qdrantclient.MatchInt("trimester", trimester)}}
	points, err := s.client.Scroll(ctx, s.collection, filter, 20)
	if err != nil {
		s.metrics.VectorStoreOps.WithLabelValues("get_by_trimester", "error").Inc()
		return nil, apperror.Unavailable(err, "failed to fetch trimester %d", trimester)
	}

	records := make([]model.WeekRecord, 0, len(points))
	for _, p := range points {
		record, err := decodeRecord(p.Payload)
		if err != nil {
			s.logger.Warn().Err(err).Str("point_id", p.ID).Msg("skipping undecodable point")
			continue
		}
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Week < records[j].Week })
	s.metrics.VectorStoreOps.WithLabelValues("get_by_trimester", "ok").Inc()
	return records, nil
}

// HealthCheck reports reachability and the number of indexed records.
func (s *Store) HealthCheck(ctx context.Context) Health {
	if err := s.client.Ping(ctx); err != nil {
		return Health{Reachable: false}
	}
	count, err := s.client.Count(ctx, s.collection)
	if err != nil {
		return Health{Reachable: true}
	}
	return Health{Reachable: true, RecordCount: count}
}

// CanonicalText composes the searchable text representation of a record.
func CanonicalText(record model.WeekRecord) string {
	parts := []string{
		fmt.Sprintf("Week %d", record.Week),
		fmt.Sprintf("Trimester %d", record.Trimester),
		fmt.Sprintf("Baby size: %s", record.BabySize.Comparison),
	}
	for _, dev := range record.Developments {
		parts = append(parts, fmt.Sprintf("Development: %s - %s", dev.Title, dev.Description))
	}
	if len(record.Symptoms) > 0 {
		parts = append(parts, "Symptoms: "+strings.Join(record.Symptoms, ", "))
	}
	if len(record.Tips) > 0 {
		parts = append(parts, "Tips: "+strings.Join(record.Tips, ", "))
	}
	return strings.Join(parts, " ")
}

func pointIDForWeek(week int) string {
	return uuid.NewSHA1(weekNamespace, []byte(fmt.Sprintf("week-%d", week))).String()
}

func recordPayload(record model.WeekRecord, text string) (map[string]interface{}, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	payload["text_content"] = text
	return payload, nil
}

// decodeRecord converts a raw payload into a typed record at the boundary,
// rejecting payloads that do not carry a valid week.
func decodeRecord(payload map[string]interface{}) (*model.WeekRecord, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var record model.WeekRecord
	if err := json.Unmarshal(encoded, &record); err != nil {
		return nil, err
	}
	if !model.ValidWeek(record.Week) {
		return nil, fmt.Errorf("payload has no valid week field")
	}
	record.Normalize()
	return &record, nil
}
