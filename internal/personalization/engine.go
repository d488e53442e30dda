// Package personalization implements the retrieval-augmented pipeline
// that turns weekly reference records and a patient's medical profile
// into personalized, risk-annotated week content.
package personalization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

// Pipeline stage names reported in failures and metrics.
const (
	StageWeekContext    = "week_context"
	StagePatientContext = "patient_context"
	StageGeneration     = "generation"
)

const (
	baseConfidence  = 0.7
	confidenceBoost = 0.1
	relatedLimit    = 3
)

// WeekSource is the slice of the knowledge store the engine depends on.
type WeekSource interface {
	GetByWeek(ctx context.Context, week int) (*model.WeekRecord, error)
	Search(ctx context.Context, query string, limit int, filter *knowledge.Filter) ([]model.ScoredWeek, error)
	GetByTrimester(ctx context.Context, trimester int) ([]model.WeekRecord, error)
	HealthCheck(ctx context.Context) knowledge.Health
}

// ProfileSource resolves patient profiles with a synthetic fallback.
type ProfileSource interface {
	GetProfile(ctx context.Context, patientID string) (*model.PatientProfile, error)
	SyntheticProfile(patientID string) model.PatientProfile
	GetProfileOrSynthetic(ctx context.Context, patientID string) model.PatientProfile
	HealthCheck(ctx context.Context) bool
}

// Engine orchestrates retrieval, augmentation and generation.
type Engine struct {
	weeks    WeekSource
	profiles ProfileSource
	overlay  NoteRewriter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Option configures optional engine behavior.
type Option func(*Engine)

// WithLLMOverlay enables best-effort generative rewriting of personalized
// notes. The overlay never changes risk levels, advisories or monitoring
// sets, and its failures never fail a request.
func WithLLMOverlay(rewriter NoteRewriter) Option {
	return func(e *Engine) { e.overlay = rewriter }
}

func NewEngine(weeks WeekSource, profiles ProfileSource, m *metrics.Metrics, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		weeks:    weeks,
		profiles: profiles,
		metrics:  m,
		logger:   logger.With().Str("component", "personalization_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetPersonalizedDevelopments runs the full pipeline for one week and one
// patient.
func (e *Engine) GetPersonalizedDevelopments(ctx context.Context, week int, patientID string, useSynthetic bool) (*model.PersonalizationResult, error) {
	if !model.ValidWeek(week) {
		e.metrics.PipelineRequests.WithLabelValues("invalid_input").Inc()
		return nil, apperror.InvalidInput("week must be between %d and %d, got %d", model.MinWeek, model.MaxWeek, week)
	}

	var (
		weekRecord *model.WeekRecord
		related    []model.ScoredWeek
		profile    model.PatientProfile
	)

	// Week context and patient context are independent; fetch them in
	// parallel. Only the week record is required.
	retrieveStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		record, err := e.weeks.GetByWeek(gctx, week)
		if err != nil {
			return apperror.Pipeline(StageWeekContext, err)
		}
		weekRecord = record
		return nil
	})
	g.Go(func() error {
		query := fmt.Sprintf("week %d pregnancy developments symptoms", week)
		hits, err := e.weeks.Search(gctx, query, relatedLimit, nil)
		if err != nil {
			// Related weeks only broaden the context; losing them costs
			// confidence, not the request.
			e.logger.Warn().Err(err).Int("week", week).Msg("related-week search failed")
			return nil
		}
		related = hits
		return nil
	})
	g.Go(func() error {
		if useSynthetic {
			profile = e.profiles.SyntheticProfile(patientID)
			return nil
		}
		profile = e.profiles.GetProfileOrSynthetic(gctx, patientID)
		return nil
	})
	if err := g.Wait(); err != nil {
		e.metrics.PipelineRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	e.metrics.PipelineDuration.WithLabelValues(StageWeekContext).Observe(time.Since(retrieveStart).Seconds())

	genStart := time.Now()
	result := e.generate(ctx, weekRecord, profile, related)
	result.PatientID = patientID
	e.metrics.PipelineDuration.WithLabelValues(StageGeneration).Observe(time.Since(genStart).Seconds())

	e.metrics.PipelineRequests.WithLabelValues("ok").Inc()
	e.metrics.ConfidenceScore.Observe(result.ConfidenceScore)
	return result, nil
}

func (e *Engine) generate(ctx context.Context, record *model.WeekRecord, profile model.PatientProfile, related []model.ScoredWeek) *model.PersonalizationResult {
	developments := make([]model.PersonalizedDevelopment, 0, len(record.Developments))
	advisories := newStringSet()
	monitoring := newStringSet()

	for _, dev := range record.Developments {
		pd := personalizeDevelopment(dev, profile)
		if e.overlay != nil {
			pd.PersonalizedNote = e.applyOverlay(ctx, record, profile, pd.PersonalizedNote)
		}
		developments = append(developments, pd)

		if pd.MedicalConsideration != "" {
			advisories.add(strings.Split(pd.MedicalConsideration, "; ")...)
		}
		monitoring.add(pd.MonitoringRecommendations...)
	}

	return &model.PersonalizationResult{
		Week:              record.Week,
		Trimester:         record.Trimester,
		Developments:      developments,
		MedicalAdvisories: advisories.values(),
		SpecialMonitoring: monitoring.values(),
		ContextSummary:    buildContextSummary(record, profile, related),
		ConfidenceScore:   confidenceScore(record, profile, related),
	}
}

// confidenceScore starts at the base confidence and rewards available
// context, capped at 1.0.
func confidenceScore(record *model.WeekRecord, profile model.PatientProfile, related []model.ScoredWeek) float64 {
	score := baseConfidence
	if len(record.Developments) > 0 {
		score += confidenceBoost
	}
	if profile.HasDiseaseHistory() {
		score += confidenceBoost
	}
	if len(related) >= 2 {
		score += confidenceBoost
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func buildContextSummary(record *model.WeekRecord, profile model.PatientProfile, related []model.ScoredWeek) string {
	parts := []string{
		fmt.Sprintf("Pregnancy Week %d Information:", record.Week),
		fmt.Sprintf("Baby Size: %s", record.BabySize.Comparison),
		fmt.Sprintf("Key Developments: %d developments identified", len(record.Developments)),
		fmt.Sprintf("Patient Profile: Age %d, Blood Type %s", profile.Age, profile.BloodType),
		fmt.Sprintf("Medical History: %d conditions documented", len(profile.DiseaseHistory)),
	}
	for _, disease := range profile.DiseaseHistory {
		if disease.Relevant() {
			parts = append(parts, fmt.Sprintf("- %s: %s severity, %s status", disease.DiseaseName, disease.Severity, disease.CurrentStatus))
		}
	}
	if len(profile.CurrentMedications) > 0 {
		parts = append(parts, "Medications: "+strings.Join(profile.CurrentMedications, ", "))
	}
	if len(profile.Allergies) > 0 {
		parts = append(parts, "Allergies: "+strings.Join(profile.Allergies, ", "))
	}
	if len(related) > 0 {
		parts = append(parts, fmt.Sprintf("Related Weeks Context: %d similar weeks analyzed", len(related)))
	}
	return strings.Join(parts, " | ")
}

// GetTrimesterRecommendations personalizes every indexed week of a
// trimester, tagging each with its phase within the trimester.
func (e *Engine) GetTrimesterRecommendations(ctx context.Context, trimester int, patientID string) ([]model.WeekRecommendation, error) {
	if !model.ValidTrimester(trimester) {
		return nil, apperror.InvalidInput("trimester must be 1, 2 or 3, got %d", trimester)
	}

	records, err := e.weeks.GetByTrimester(ctx, trimester)
	if err != nil {
		return nil, apperror.Pipeline(StageWeekContext, err)
	}
	if len(records) == 0 {
		return nil, apperror.NotFound("no data indexed for trimester %d", trimester)
	}

	var profile model.PatientProfile
	if patientID != "" {
		profile = e.profiles.GetProfileOrSynthetic(ctx, patientID)
	}

	matched := matchedCategories(profile)
	first, last := model.WeekRangeForTrimester(trimester)

	recommendations := make([]model.WeekRecommendation, 0, len(records))
	for _, record := range records {
		rec := model.WeekRecommendation{
			Week:             record.Week,
			Phase:            phaseForWeek(record.Week, first, last),
			SizeComparison:   record.BabySize.Comparison,
			Weight:           record.BabySize.Weight,
			Length:           record.BabySize.Length,
			PersonalizedNote: fmt.Sprintf("Baby is about the size of a %s at week %d.", strings.ToLower(record.BabySize.Comparison), record.Week),
		}
		if len(matched) > 0 {
			rec.MedicalConsideration = matched[0].growthNote
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

// phaseForWeek splits a trimester's week range into thirds.
func phaseForWeek(week, first, last int) string {
	span := last - first + 1
	switch ((week - first) * 3) / span {
	case 0:
		return model.PhaseEarly
	case 1:
		return model.PhaseMid
	default:
		return model.PhaseLate
	}
}

// Health reports the engine's dependency status.
type Health struct {
	Store          knowledge.Health `json:"vector_store"`
	PatientBackend bool             `json:"patient_backend"`
}

// HealthCheck probes both retrieval dependencies.
func (e *Engine) HealthCheck(ctx context.Context) Health {
	return Health{
		Store:          e.weeks.HealthCheck(ctx),
		PatientBackend: e.profiles.HealthCheck(ctx),
	}
}
