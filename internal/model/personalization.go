package model

// RiskLevel flags how closely a development should be monitored for a
// given patient. Levels are totally ordered: low < medium < high.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskRank = map[RiskLevel]int{
	RiskLow:    0,
	RiskMedium: 1,
	RiskHigh:   2,
}

// Rank returns the position of the level in the ordering. Unknown levels
// rank as low.
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// MaxRiskLevel returns the higher of two levels. The reduction is
// commutative, so the final level never depends on evaluation order.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// PersonalizedDevelopment annotates one week development with
// patient-specific guidance.
type PersonalizedDevelopment struct {
	Development               Development `json:"development"`
	PersonalizedNote          string      `json:"personalized_note"`
	MedicalConsideration      string      `json:"medical_consideration,omitempty"`
	RiskLevel                 RiskLevel   `json:"risk_level"`
	MonitoringRecommendations []string    `json:"monitoring_recommendations"`
}

// PersonalizationResult is the full personalized view of one week for one
// patient.
type PersonalizationResult struct {
	PatientID         string                    `json:"patient_id"`
	Week              int                       `json:"week"`
	Trimester         int                       `json:"trimester"`
	Developments      []PersonalizedDevelopment `json:"personalized_developments"`
	MedicalAdvisories []string                  `json:"medical_advisories"`
	SpecialMonitoring []string                  `json:"special_monitoring"`
	ContextSummary    string                    `json:"context_summary"`
	ConfidenceScore   float64                   `json:"confidence_score"`
}

// Trimester phase labels derived from a week's position within its trimester.
const (
	PhaseEarly = "early"
	PhaseMid   = "mid"
	PhaseLate  = "late"
)

// WeekRecommendation is one week's entry in a trimester recommendation set.
type WeekRecommendation struct {
	Week                 int    `json:"week"`
	Phase                string `json:"phase"`
	SizeComparison       string `json:"size_comparison"`
	Weight               string `json:"weight,omitempty"`
	Length               string `json:"length,omitempty"`
	PersonalizedNote     string `json:"personalized_note"`
	MedicalConsideration string `json:"medical_consideration,omitempty"`
}
