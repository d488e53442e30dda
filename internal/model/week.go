package model

const (
	// MinWeek and MaxWeek bound the supported gestational range.
	MinWeek = 1
	MaxWeek = 40
)

// BabySize holds the familiar size comparison for a week.
type BabySize struct {
	Comparison string `json:"comparison"`
	Weight     string `json:"weight,omitempty"`
	Length     string `json:"length,omitempty"`
}

// Development is one fetal development milestone within a week.
type Development struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category"`
}

// WeekRecord is the canonical reference record for a single pregnancy week.
// One record exists per week; re-indexing a week replaces the stored record.
type WeekRecord struct {
	Week          int           `json:"week" binding:"required,min=1,max=40"`
	Trimester     int           `json:"trimester"`
	DaysRemaining int           `json:"days_remaining"`
	BabySize      BabySize      `json:"baby_size"`
	Developments  []Development `json:"key_developments"`
	Symptoms      []string      `json:"symptoms"`
	Tips          []string      `json:"tips"`
}

// TrimesterForWeek derives the trimester from the week number.
func TrimesterForWeek(week int) int {
	switch {
	case week <= 13:
		return 1
	case week <= 26:
		return 2
	default:
		return 3
	}
}

// DaysRemainingForWeek estimates days until the due date at the start of a week.
func DaysRemainingForWeek(week int) int {
	if week >= MaxWeek {
		return 0
	}
	return (MaxWeek - week) * 7
}

// ValidWeek reports whether the week is inside the supported range.
func ValidWeek(week int) bool {
	return week >= MinWeek && week <= MaxWeek
}

// ValidTrimester reports whether t names one of the three trimesters.
func ValidTrimester(t int) bool {
	return t >= 1 && t <= 3
}

// WeekRangeForTrimester returns the inclusive week bounds of a trimester.
func WeekRangeForTrimester(t int) (first, last int) {
	switch t {
	case 1:
		return 1, 13
	case 2:
		return 14, 26
	default:
		return 27, 40
	}
}

// Normalize fills the derived fields from the week number.
func (w *WeekRecord) Normalize() {
	w.Trimester = TrimesterForWeek(w.Week)
	w.DaysRemaining = DaysRemainingForWeek(w.Week)
}

// ScoredWeek pairs a retrieved record with its similarity score.
type ScoredWeek struct {
	Score  float64    `json:"score"`
	Record WeekRecord `json:"record"`
}
