// Package patient fetches patient medical profiles from the patient
// backend, with a deterministic synthetic fallback for offline use.
package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/circuitbreaker"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

// Provider resolves patient profiles.
type Provider interface {
	GetProfile(ctx context.Context, patientID string) (*model.PatientProfile, error)
	SyntheticProfile(patientID string) model.PatientProfile
	GetProfileOrSynthetic(ctx context.Context, patientID string) model.PatientProfile
	HealthCheck(ctx context.Context) bool
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// BackendProvider fetches profiles over HTTP from the patient backend.
type BackendProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewBackendProvider(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *BackendProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &BackendProvider{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:             "patient-backend",
			FailureThreshold: 5,
			Interval:         10 * time.Second,
			Timeout:          30 * time.Second,
		}),
		metrics: m,
		logger:  logger.With().Str("component", "patient_provider").Logger(),
	}
}

// GetProfile fetches a patient profile from the backend. Absent patients
// map to NotFound, transport and server failures to Unavailable.
func (p *BackendProvider) GetProfile(ctx context.Context, patientID string) (*model.PatientProfile, error) {
	if patientID == "" {
		return nil, apperror.InvalidInput("patient ID is required")
	}

	var profile *model.PatientProfile
	err := p.breaker.Execute(func() error {
		var fetchErr error
		profile, fetchErr = p.fetch(ctx, patientID)
		if apperror.IsNotFound(fetchErr) {
			// A missing patient is an answer, not a backend fault.
			return nil
		}
		return fetchErr
	})
	if err != nil {
		p.metrics.ProfileFetches.WithLabelValues("backend", "error").Inc()
		if apperror.IsUnavailable(err) {
			return nil, err
		}
		return nil, apperror.Unavailable(err, "patient backend unreachable")
	}
	if profile == nil {
		p.metrics.ProfileFetches.WithLabelValues("backend", "not_found").Inc()
		return nil, apperror.NotFound("patient %s not found", patientID)
	}

	p.metrics.ProfileFetches.WithLabelValues("backend", "ok").Inc()
	return profile, nil
}

func (p *BackendProvider) fetch(ctx context.Context, patientID string) (*model.PatientProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/patients/%s", p.baseURL, patientID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to reach patient backend")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound("patient %s not found", patientID)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperror.Unavailable(fmt.Errorf("status %d: %s", resp.StatusCode, body), "patient backend error")
	}

	var profile model.PatientProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode patient profile: %w", err)
	}
	if profile.PatientID == "" {
		profile.PatientID = patientID
	}
	return &profile, nil
}

// GetProfileOrSynthetic resolves a profile, falling back to the synthetic
// generator on any failure. Unavailable never escapes this call.
func (p *BackendProvider) GetProfileOrSynthetic(ctx context.Context, patientID string) model.PatientProfile {
	profile, err := p.GetProfile(ctx, patientID)
	if err != nil {
		p.logger.Warn().Err(err).Str("patient_id", patientID).Msg("falling back to synthetic profile")
		p.metrics.ProfileFetches.WithLabelValues("synthetic", "ok").Inc()
		return p.SyntheticProfile(patientID)
	}
	return *profile
}

// HealthCheck probes the backend's health endpoint.
func (p *BackendProvider) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}
