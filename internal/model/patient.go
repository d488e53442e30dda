package model

import "time"

// Disease severity levels as recorded in patient history.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Disease status values.
const (
	StatusActive    = "active"
	StatusRemission = "remission"
	StatusResolved  = "resolved"
)

// DiseaseHistoryEntry is one documented condition in a patient's history.
type DiseaseHistoryEntry struct {
	DiseaseName     string     `json:"disease_name"`
	DiagnosisDate   *time.Time `json:"diagnosis_date,omitempty"`
	Severity        string     `json:"severity"`
	CurrentStatus   string     `json:"current_status"`
	Treatment       []string   `json:"treatment,omitempty"`
	PregnancyImpact string     `json:"pregnancy_impact,omitempty"`
}

// Relevant reports whether this entry should influence personalization.
// Resolved conditions are kept for the record but carry no active risk.
func (d DiseaseHistoryEntry) Relevant() bool {
	return d.CurrentStatus == StatusActive || d.CurrentStatus == StatusRemission
}

// PatientProfile is the medical profile used to personalize week content.
type PatientProfile struct {
	PatientID            string                `json:"patient_id"`
	Age                  int                   `json:"age"`
	BloodType            string                `json:"blood_type"`
	LastPeriodDate       time.Time             `json:"lmp_date"`
	ExpectedDeliveryDate time.Time             `json:"expected_delivery"`
	DiseaseHistory       []DiseaseHistoryEntry `json:"disease_history"`
	CurrentMedications   []string              `json:"current_medications"`
	Allergies            []string              `json:"allergies"`
	PreviousPregnancies  int                   `json:"previous_pregnancies"`
}

// HasDiseaseHistory reports whether any condition is documented beyond the
// placeholder "none" entry a synthetic profile may carry.
func (p PatientProfile) HasDiseaseHistory() bool {
	for _, d := range p.DiseaseHistory {
		if d.Relevant() {
			return true
		}
	}
	return false
}
