package personalization

import (
	"fmt"
	"strings"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
)

// conditionCategory maps a family of documented conditions to the guidance
// it adds to a development. Categories are evaluated in the fixed order
// below; the final risk level is the maximum across all matches, so the
// order never changes the outcome.
type conditionCategory struct {
	id              string
	keywords        []string
	noteClause      string
	consideration   string
	growthNote      string
	recommendations []string
	risk            model.RiskLevel
}

var conditionCategories = []conditionCategory{
	{
		id:            "diabetes",
		keywords:      []string{"diabetes", "glucose intolerance", "insulin resistance"},
		noteClause:    "Given your diabetes history, blood sugar control is crucial during this development phase.",
		consideration: "Diabetes can affect fetal growth and development",
		growthNote:    "Monitor blood sugar levels as baby grows",
		recommendations: []string{
			"Daily blood glucose monitoring",
			"Nutritionist consultation",
			"Endocrinologist review",
		},
		risk: model.RiskMedium,
	},
	{
		id:            "hypertension",
		keywords:      []string{"hypertension", "high blood pressure"},
		noteClause:    "Due to your blood pressure history, cardiovascular monitoring is important.",
		consideration: "Hypertension increases risk of preeclampsia and other complications",
		growthNote:    "Blood pressure monitoring important during growth spurts",
		recommendations: []string{
			"Daily blood pressure monitoring",
			"Preeclampsia screening",
			"Cardiologist consultation",
		},
		risk: model.RiskMedium,
	},
	{
		id:            "cancer",
		keywords:      []string{"cancer", "carcinoma", "lymphoma", "leukemia"},
		noteClause:    "Your previous cancer treatment history requires special monitoring during pregnancy.",
		consideration: "Previous cancer treatment may affect fetal development and pregnancy risks",
		growthNote:    "High-risk follow-up recommended as baby grows",
		recommendations: []string{
			"Oncologist consultation",
			"Specialized blood work",
			"High-risk pregnancy monitoring",
		},
		risk: model.RiskHigh,
	},
	{
		id:            "autoimmune",
		keywords:      []string{"lupus", "autoimmune", "rheumatoid", "multiple sclerosis", "crohn"},
		noteClause:    "Your autoimmune condition calls for coordinated specialist care during pregnancy.",
		consideration: "Autoimmune disease activity can affect pregnancy outcomes",
		growthNote:    "Watch for disease flares during growth phases",
		recommendations: []string{
			"Rheumatologist consultation",
			"Antibody screening",
			"Fetal growth monitoring",
		},
		risk: model.RiskMedium,
	},
}

const (
	medicationConsideration = "Medication safety during pregnancy needs evaluation"
	ageConsideration        = "Advanced maternal age increases certain pregnancy risks"
	advancedMaternalAge     = 35
)

// matchedCategories returns the categories triggered by the patient's
// relevant disease history, in fixed category order, each at most once.
func matchedCategories(profile model.PatientProfile) []conditionCategory {
	var matched []conditionCategory
	for _, cat := range conditionCategories {
		for _, disease := range profile.DiseaseHistory {
			if !disease.Relevant() {
				continue
			}
			if cat.matches(disease.DiseaseName) {
				matched = append(matched, cat)
				break
			}
		}
	}
	return matched
}

func (c conditionCategory) matches(diseaseName string) bool {
	name := strings.ToLower(diseaseName)
	for _, kw := range c.keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// personalizeDevelopment applies the rule set to one development.
func personalizeDevelopment(dev model.Development, profile model.PatientProfile) model.PersonalizedDevelopment {
	note := []string{dev.Description}
	var considerations []string
	risk := model.RiskLow
	recs := newStringSet()

	for _, cat := range matchedCategories(profile) {
		note = append(note, cat.noteClause)
		considerations = append(considerations, cat.consideration)
		recs.add(cat.recommendations...)
		risk = model.MaxRiskLevel(risk, cat.risk)
	}

	for _, disease := range profile.DiseaseHistory {
		if disease.Relevant() && len(disease.Treatment) > 0 {
			note = append(note, fmt.Sprintf("Current medications (%s) may need review during pregnancy.", strings.Join(disease.Treatment, ", ")))
			considerations = append(considerations, medicationConsideration)
			recs.add("Medication review with healthcare provider")
			break
		}
	}

	if profile.Age > advancedMaternalAge {
		note = append(note, "Given your age, additional screening may be recommended.")
		considerations = append(considerations, ageConsideration)
		risk = model.MaxRiskLevel(risk, model.RiskMedium)
		recs.add("Genetic counseling", "Additional ultrasound monitoring")
	}

	if profile.PreviousPregnancies > 0 {
		note = append(note, "Your previous pregnancy experience may provide insights for this pregnancy.")
		recs.add("Review previous pregnancy records")
	}

	return model.PersonalizedDevelopment{
		Development:               dev,
		PersonalizedNote:          strings.Join(note, " "),
		MedicalConsideration:      strings.Join(dedupe(considerations), "; "),
		RiskLevel:                 risk,
		MonitoringRecommendations: recs.values(),
	}
}

// stringSet preserves insertion order while deduplicating.
type stringSet struct {
	seen  map[string]bool
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]bool)}
}

func (s *stringSet) add(items ...string) {
	for _, item := range items {
		if item == "" || s.seen[item] {
			continue
		}
		s.seen[item] = true
		s.items = append(s.items, item)
	}
}

func (s *stringSet) values() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}

func dedupe(items []string) []string {
	set := newStringSet()
	set.add(items...)
	return set.values()
}
