package personalization

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

type fakeWeekSource struct {
	records      map[int]*model.WeekRecord
	related      []model.ScoredWeek
	searchErr    error
	getByWeekErr error
	calls        atomic.Int32
}

func (f *fakeWeekSource) GetByWeek(_ context.Context, week int) (*model.WeekRecord, error) {
	f.calls.Add(1)
	if f.getByWeekErr != nil {
		return nil, f.getByWeekErr
	}
	record, ok := f.records[week]
	if !ok {
		return nil, apperror.NotFound("no record for week %d", week)
	}
	return record, nil
}

func (f *fakeWeekSource) Search(_ context.Context, _ string, _ int, _ *knowledge.Filter) ([]model.ScoredWeek, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.related, nil
}

func (f *fakeWeekSource) GetByTrimester(_ context.Context, trimester int) ([]model.WeekRecord, error) {
	first, last := model.WeekRangeForTrimester(trimester)
	var records []model.WeekRecord
	for week := first; week <= last; week++ {
		if r, ok := f.records[week]; ok {
			records = append(records, *r)
		}
	}
	return records, nil
}

func (f *fakeWeekSource) HealthCheck(context.Context) knowledge.Health {
	return knowledge.Health{Reachable: true, RecordCount: len(f.records)}
}

type fakeProfileSource struct {
	profile model.PatientProfile
}

func (f *fakeProfileSource) GetProfile(_ context.Context, _ string) (*model.PatientProfile, error) {
	p := f.profile
	return &p, nil
}

func (f *fakeProfileSource) SyntheticProfile(patientID string) model.PatientProfile {
	p := f.profile
	p.PatientID = patientID
	return p
}

func (f *fakeProfileSource) GetProfileOrSynthetic(_ context.Context, patientID string) model.PatientProfile {
	p := f.profile
	p.PatientID = patientID
	return p
}

func (f *fakeProfileSource) HealthCheck(context.Context) bool { return true }

func testRecord(week int) *model.WeekRecord {
	record := &model.WeekRecord{
		Week:     week,
		BabySize: model.BabySize{Comparison: "Mango", Weight: "150g"},
		Developments: []model.Development{
			{Title: "Hearing", Description: "Baby can hear sounds now."},
			{Title: "Movement", Description: "You may feel the first kicks."},
		},
	}
	record.Normalize()
	return record
}

func newTestEngine(weeks *fakeWeekSource, profiles *fakeProfileSource, opts ...Option) *Engine {
	return NewEngine(weeks, profiles, metrics.NewTestMetrics(), zerolog.Nop(), opts...)
}

func TestGetPersonalizedDevelopments(t *testing.T) {
	weeks := &fakeWeekSource{
		records: map[int]*model.WeekRecord{20: testRecord(20)},
		related: []model.ScoredWeek{
			{Score: 0.9, Record: *testRecord(19)},
			{Score: 0.8, Record: *testRecord(21)},
		},
	}
	profiles := &fakeProfileSource{profile: model.PatientProfile{
		Age:       30,
		BloodType: "A+",
		DiseaseHistory: []model.DiseaseHistoryEntry{
			{DiseaseName: "Type 2 Diabetes", CurrentStatus: model.StatusActive},
		},
	}}
	engine := newTestEngine(weeks, profiles)

	result, err := engine.GetPersonalizedDevelopments(context.Background(), 20, "patient-1", false)
	require.NoError(t, err)

	assert.Equal(t, 20, result.Week)
	assert.Equal(t, 2, result.Trimester)
	assert.Equal(t, "patient-1", result.PatientID)
	assert.Len(t, result.Developments, 2)
	for _, dev := range result.Developments {
		assert.Equal(t, model.RiskMedium, dev.RiskLevel)
	}
	assert.Contains(t, result.MedicalAdvisories, "Diabetes can affect fetal growth and development")
	assert.Contains(t, result.SpecialMonitoring, "Daily blood glucose monitoring")
	assert.Contains(t, result.ContextSummary, "Pregnancy Week 20 Information:")
	assert.Contains(t, result.ContextSummary, "Baby Size: Mango")

	// All three boosts apply: developments, disease history, related weeks.
	assert.InDelta(t, 1.0, result.ConfidenceScore, 1e-9)
}

func TestConfidenceBounds(t *testing.T) {
	weeks := &fakeWeekSource{records: map[int]*model.WeekRecord{
		12: {Week: 12, Trimester: 1, BabySize: model.BabySize{Comparison: "Lime"}},
	}}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	result, err := engine.GetPersonalizedDevelopments(context.Background(), 12, "", true)
	require.NoError(t, err)

	// No developments, no history, no related weeks: base confidence only.
	assert.InDelta(t, 0.7, result.ConfidenceScore, 1e-9)
}

func TestInvalidWeekShortCircuits(t *testing.T) {
	weeks := &fakeWeekSource{records: map[int]*model.WeekRecord{}}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	_, err := engine.GetPersonalizedDevelopments(context.Background(), 45, "", true)
	assert.True(t, apperror.IsInvalidInput(err))
	assert.Equal(t, int32(0), weeks.calls.Load(), "invalid week must not reach the store")
}

func TestMissingWeekIsNotFound(t *testing.T) {
	weeks := &fakeWeekSource{records: map[int]*model.WeekRecord{}}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	_, err := engine.GetPersonalizedDevelopments(context.Background(), 7, "", true)
	assert.True(t, apperror.IsNotFound(err))
}

func TestStoreOutageSurfacesAsPipelineFailure(t *testing.T) {
	weeks := &fakeWeekSource{getByWeekErr: errors.New("connection refused")}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	_, err := engine.GetPersonalizedDevelopments(context.Background(), 20, "", true)
	pe, ok := apperror.AsPipeline(err)
	require.True(t, ok)
	assert.Equal(t, StageWeekContext, pe.Stage)
}

func TestSearchFailureIsBestEffort(t *testing.T) {
	weeks := &fakeWeekSource{
		records:   map[int]*model.WeekRecord{20: testRecord(20)},
		searchErr: errors.New("search timeout"),
	}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	result, err := engine.GetPersonalizedDevelopments(context.Background(), 20, "", true)
	require.NoError(t, err)
	assert.NotContains(t, result.ContextSummary, "Related Weeks Context")
}

func TestOverlayFailureKeepsRuleBasedNote(t *testing.T) {
	weeks := &fakeWeekSource{records: map[int]*model.WeekRecord{20: testRecord(20)}}
	failing := rewriterFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("model overloaded")
	})
	engine := newTestEngine(weeks, &fakeProfileSource{}, WithLLMOverlay(failing))

	result, err := engine.GetPersonalizedDevelopments(context.Background(), 20, "", true)
	require.NoError(t, err)
	assert.Equal(t, "Baby can hear sounds now.", result.Developments[0].PersonalizedNote)
}

type rewriterFunc func(ctx context.Context, contextBlock, note string) (string, error)

func (f rewriterFunc) RewriteNote(ctx context.Context, contextBlock, note string) (string, error) {
	return f(ctx, contextBlock, note)
}

func TestGetTrimesterRecommendations(t *testing.T) {
	records := make(map[int]*model.WeekRecord)
	for week := 14; week <= 26; week++ {
		records[week] = testRecord(week)
	}
	weeks := &fakeWeekSource{records: records}
	engine := newTestEngine(weeks, &fakeProfileSource{})

	recs, err := engine.GetTrimesterRecommendations(context.Background(), 2, "")
	require.NoError(t, err)
	require.Len(t, recs, 13)

	assert.Equal(t, model.PhaseEarly, recs[0].Phase)
	assert.Equal(t, model.PhaseLate, recs[len(recs)-1].Phase)
	assert.Contains(t, recs[0].PersonalizedNote, "size of a mango at week 14")
}

func TestTrimesterRecommendationsWithConditions(t *testing.T) {
	weeks := &fakeWeekSource{records: map[int]*model.WeekRecord{20: testRecord(20)}}
	profiles := &fakeProfileSource{profile: model.PatientProfile{
		DiseaseHistory: []model.DiseaseHistoryEntry{
			{DiseaseName: "Hypertension", CurrentStatus: model.StatusActive},
		},
	}}
	engine := newTestEngine(weeks, profiles)

	recs, err := engine.GetTrimesterRecommendations(context.Background(), 2, "patient-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Blood pressure monitoring important during growth spurts", recs[0].MedicalConsideration)
}

func TestTrimesterValidation(t *testing.T) {
	engine := newTestEngine(&fakeWeekSource{}, &fakeProfileSource{})

	_, err := engine.GetTrimesterRecommendations(context.Background(), 4, "")
	assert.True(t, apperror.IsInvalidInput(err))

	_, err = engine.GetTrimesterRecommendations(context.Background(), 1, "")
	assert.True(t, apperror.IsNotFound(err), "empty trimester should be not found")
}

func TestPhaseForWeekCoversWholeTrimester(t *testing.T) {
	for trimester := 1; trimester <= 3; trimester++ {
		first, last := model.WeekRangeForTrimester(trimester)
		seen := map[string]bool{}
		for week := first; week <= last; week++ {
			seen[phaseForWeek(week, first, last)] = true
		}
		assert.True(t, seen[model.PhaseEarly])
		assert.True(t, seen[model.PhaseMid])
		assert.True(t, seen[model.PhaseLate])
	}
}
