package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge/qdrantclient"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

// fakeQdrant emulates the slice of the points API the store uses, keeping
// points in a map keyed by ID so deterministic IDs overwrite.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]bool
	points      map[string]qdrantclient.Point
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{
		collections: make(map[string]bool),
		points:      make(map[string]qdrantclient.Point),
	}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		exists := f.collections[r.PathValue("name")]
		f.mu.Unlock()
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.collections[r.PathValue("name")] = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /collections/{name}/index", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []qdrantclient.Point `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		for _, p := range body.Points {
			f.points[p.ID] = p
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /collections/{name}/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter *qdrantclient.Filter `json:"filter"`
			Limit  int                  `json:"limit"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var matched []qdrantclient.Point
		f.mu.Lock()
		for _, p := range f.points {
			if matchesFilter(p.Payload, body.Filter) {
				matched = append(matched, qdrantclient.Point{ID: p.ID, Payload: p.Payload})
			}
			if body.Limit > 0 && len(matched) >= body.Limit {
				break
			}
		}
		f.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"points": matched},
		})
	})
	mux.HandleFunc("POST /collections/{name}/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter *qdrantclient.Filter `json:"filter"`
			Limit  int                  `json:"limit"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var hits []qdrantclient.ScoredPoint
		score := 0.5
		f.mu.Lock()
		for _, p := range f.points {
			if !matchesFilter(p.Payload, body.Filter) {
				continue
			}
			hits = append(hits, qdrantclient.ScoredPoint{ID: p.ID, Score: score, Payload: p.Payload})
			score += 0.1
			if body.Limit > 0 && len(hits) >= body.Limit {
				break
			}
		}
		f.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{"result": hits})
	})
	mux.HandleFunc("POST /collections/{name}/points/count", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		count := len(f.points)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"count": count},
		})
	})
	return mux
}

func matchesFilter(payload map[string]interface{}, filter *qdrantclient.Filter) bool {
	if filter == nil {
		return true
	}
	for _, cond := range filter.Must {
		want, ok := cond.Match.Value.(float64)
		if !ok {
			return false
		}
		have, ok := payload[cond.Key].(float64)
		if !ok || have != want {
			return false
		}
	}
	return true
}

func newTestStore(t *testing.T) (*Store, *fakeQdrant) {
	t.Helper()
	fake := newFakeQdrant()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := qdrantclient.New(qdrantclient.Config{URL: server.URL})
	require.NoError(t, err)
	return NewStore(client, "weeks_test", NewHashingEmbedder(), metrics.NewTestMetrics(), zerolog.Nop()), fake
}

func TestEnsureCollection(t *testing.T) {
	store, fake := newTestStore(t)

	require.NoError(t, store.EnsureCollection(context.Background()))
	assert.True(t, fake.collections["weeks_test"])

	// Second run is a no-op against the existing collection.
	require.NoError(t, store.EnsureCollection(context.Background()))
}

func TestUpsertAndGetByWeek(t *testing.T) {
	store, _ := newTestStore(t)

	record := BuiltinRecord(20)
	require.NoError(t, store.Upsert(context.Background(), record))

	got, err := store.GetByWeek(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Week)
	assert.Equal(t, 2, got.Trimester)
	assert.Equal(t, record.BabySize.Comparison, got.BabySize.Comparison)
}

func TestUpsertReplacesExistingWeek(t *testing.T) {
	store, fake := newTestStore(t)

	record := BuiltinRecord(12)
	require.NoError(t, store.Upsert(context.Background(), record))

	record.Tips = []string{"Schedule the first trimester screening"}
	require.NoError(t, store.Upsert(context.Background(), record))

	assert.Len(t, fake.points, 1, "re-indexing a week must replace its point")

	got, err := store.GetByWeek(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"Schedule the first trimester screening"}, got.Tips)
}

func TestUpsertNormalizesDerivedFields(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(context.Background(), model.WeekRecord{
		Week:      30,
		Trimester: 1, // wrong on purpose
		BabySize:  model.BabySize{Comparison: "Cabbage"},
	}))

	got, err := store.GetByWeek(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Trimester)
	assert.Equal(t, 70, got.DaysRemaining)
}

func TestUpsertRejectsInvalidWeek(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Upsert(context.Background(), model.WeekRecord{Week: 41})
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestGetByWeekNotIndexed(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetByWeek(context.Background(), 5)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetByWeekUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := qdrantclient.New(qdrantclient.Config{URL: server.URL})
	require.NoError(t, err)
	store := NewStore(client, "weeks_test", NewHashingEmbedder(), metrics.NewTestMetrics(), zerolog.Nop())

	_, err = store.GetByWeek(context.Background(), 5)
	assert.True(t, apperror.IsUnavailable(err))
}

func TestGetByTrimesterSorted(t *testing.T) {
	store, _ := newTestStore(t)

	for _, week := range []int{20, 14, 26} {
		require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(week)))
	}
	// Outside trimester 2, must not appear.
	require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(8)))

	records, err := store.GetByTrimester(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 14, records[0].Week)
	assert.Equal(t, 20, records[1].Week)
	assert.Equal(t, 26, records[2].Week)
}

func TestSearchOrdersByScoreDescending(t *testing.T) {
	store, _ := newTestStore(t)

	for week := 10; week <= 12; week++ {
		require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(week)))
	}

	results, err := store.Search(context.Background(), "first trimester development", 3, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchWithTrimesterFilter(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(8)))
	require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(20)))

	trimester := 2
	results, err := store.Search(context.Background(), "growth", 5, &Filter{Trimester: &trimester})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 20, results[0].Record.Week)
}

func TestHealthCheck(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(context.Background(), BuiltinRecord(20)))

	health := store.HealthCheck(context.Background())
	assert.True(t, health.Reachable)
	assert.Equal(t, 1, health.RecordCount)
}

func TestCanonicalText(t *testing.T) {
	record := model.WeekRecord{
		Week:      20,
		BabySize:  model.BabySize{Comparison: "Banana"},
		Symptoms:  []string{"Back pain", "Heartburn"},
		Tips:      []string{"Stay hydrated"},
		Developments: []model.Development{
			{Title: "Hearing", Description: "Baby can hear sounds"},
		},
	}
	record.Normalize()

	text := CanonicalText(record)
	assert.Contains(t, text, "Week 20")
	assert.Contains(t, text, "Trimester 2")
	assert.Contains(t, text, "Baby size: Banana")
	assert.Contains(t, text, "Development: Hearing - Baby can hear sounds")
	assert.Contains(t, text, "Symptoms: Back pain, Heartburn")
	assert.Contains(t, text, "Tips: Stay hydrated")
}

func TestPointIDForWeekDeterministic(t *testing.T) {
	assert.Equal(t, pointIDForWeek(20), pointIDForWeek(20))
	assert.NotEqual(t, pointIDForWeek(20), pointIDForWeek(21))
	assert.False(t, strings.Contains(pointIDForWeek(20), " "))
}
