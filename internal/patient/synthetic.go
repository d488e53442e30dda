package patient

import (
	"strings"
	"time"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// SyntheticProfile builds a deterministic, plausible profile from the
// patient identifier alone. Identifier substrings seed matching conditions
// so offline and test environments can exercise the personalization rules.
// It never fails.
func (p *BackendProvider) SyntheticProfile(patientID string) model.PatientProfile {
	return SyntheticProfile(patientID)
}

// SyntheticProfile is the package-level generator backing the provider
// method; it has no dependencies so tests can call it directly.
func SyntheticProfile(patientID string) model.PatientProfile {
	id := strings.ToLower(patientID)
	now := time.Now().UTC().Truncate(24 * time.Hour)

	var history []model.DiseaseHistoryEntry
	if strings.Contains(id, "diabetes") {
		diagnosed := now.AddDate(-1, 0, 0)
		history = append(history, model.DiseaseHistoryEntry{
			DiseaseName:     "Type 2 Diabetes",
			DiagnosisDate:   &diagnosed,
			Severity:        model.SeverityModerate,
			CurrentStatus:   model.StatusActive,
			Treatment:       []string{"Metformin", "Diet management"},
			PregnancyImpact: "Requires blood sugar monitoring and potential medication adjustments",
		})
	}
	if strings.Contains(id, "hypertension") {
		diagnosed := now.AddDate(0, -6, 0)
		history = append(history, model.DiseaseHistoryEntry{
			DiseaseName:     "Hypertension",
			DiagnosisDate:   &diagnosed,
			Severity:        model.SeverityMild,
			CurrentStatus:   model.StatusActive,
			Treatment:       []string{"Lisinopril"},
			PregnancyImpact: "Increased risk of preeclampsia, requires blood pressure monitoring",
		})
	}
	if strings.Contains(id, "cancer") {
		diagnosed := now.AddDate(-2, 0, 0)
		history = append(history, model.DiseaseHistoryEntry{
			DiseaseName:     "Breast Cancer",
			DiagnosisDate:   &diagnosed,
			Severity:        model.SeverityModerate,
			CurrentStatus:   model.StatusRemission,
			Treatment:       []string{"Chemotherapy", "Radiation therapy"},
			PregnancyImpact: "Previous cancer treatment may affect fertility and pregnancy risks",
		})
	}
	if strings.Contains(id, "lupus") || strings.Contains(id, "autoimmune") {
		diagnosed := now.AddDate(-3, 0, 0)
		history = append(history, model.DiseaseHistoryEntry{
			DiseaseName:     "Systemic Lupus Erythematosus",
			DiagnosisDate:   &diagnosed,
			Severity:        model.SeverityModerate,
			CurrentStatus:   model.StatusRemission,
			Treatment:       []string{"Hydroxychloroquine"},
			PregnancyImpact: "Flares during pregnancy require rheumatology co-management",
		})
	}
	if len(history) == 0 {
		history = append(history, model.DiseaseHistoryEntry{
			DiseaseName:     "None",
			Severity:        model.SeverityMild,
			CurrentStatus:   model.StatusResolved,
			PregnancyImpact: "No significant medical history affecting pregnancy",
		})
	}

	return model.PatientProfile{
		PatientID:            patientID,
		Age:                  28,
		BloodType:            "O+",
		LastPeriodDate:       now.AddDate(0, 0, -70),
		ExpectedDeliveryDate: now.AddDate(0, 0, 210),
		DiseaseHistory:       history,
		CurrentMedications:   []string{"Prenatal vitamins"},
		Allergies:            []string{"None known"},
		PreviousPregnancies:  0,
	}
}
