package knowledge

import "github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"

// sizeTable holds the size comparison for every supported week. The
// procedural and text image strategies read it directly; the indexer feeds
// it into the vector collection.
var sizeTable = map[int]model.BabySize{
	1:  {Comparison: "Poppy seed", Weight: "<0.1g", Length: "0.1cm"},
	2:  {Comparison: "Poppy seed", Weight: "<0.1g", Length: "0.1cm"},
	3:  {Comparison: "Sesame seed", Weight: "<0.1g", Length: "0.1cm"},
	4:  {Comparison: "Sesame seed", Weight: "0.1g", Length: "0.2cm"},
	5:  {Comparison: "Apple seed", Weight: "0.1g", Length: "0.3cm"},
	6:  {Comparison: "Sweet pea", Weight: "0.2g", Length: "0.5cm"},
	7:  {Comparison: "Blueberry", Weight: "0.5g", Length: "1.2cm"},
	8:  {Comparison: "Raspberry", Weight: "1g", Length: "1.6cm"},
	9:  {Comparison: "Grape", Weight: "2g", Length: "2.3cm"},
	10: {Comparison: "Kumquat", Weight: "4g", Length: "3.1cm"},
	11: {Comparison: "Fig", Weight: "7g", Length: "4.1cm"},
	12: {Comparison: "Lime", Weight: "14g", Length: "5.4cm"},
	13: {Comparison: "Lemon", Weight: "23g", Length: "7.4cm"},
	14: {Comparison: "Peach", Weight: "43g", Length: "8.7cm"},
	15: {Comparison: "Apple", Weight: "70g", Length: "10.1cm"},
	16: {Comparison: "Avocado", Weight: "100g", Length: "11.6cm"},
	17: {Comparison: "Pear", Weight: "140g", Length: "13cm"},
	18: {Comparison: "Sweet potato", Weight: "190g", Length: "14.2cm"},
	19: {Comparison: "Mango", Weight: "240g", Length: "15.3cm"},
	20: {Comparison: "Banana", Weight: "300g", Length: "16.4cm"},
	21: {Comparison: "Carrot", Weight: "360g", Length: "26.7cm"},
	22: {Comparison: "Papaya", Weight: "430g", Length: "27.8cm"},
	23: {Comparison: "Grapefruit", Weight: "500g", Length: "28.9cm"},
	24: {Comparison: "Corn cob", Weight: "600g", Length: "30cm"},
	25: {Comparison: "Cauliflower", Weight: "660g", Length: "34.6cm"},
	26: {Comparison: "Lettuce", Weight: "760g", Length: "35.6cm"},
	27: {Comparison: "Cabbage", Weight: "875g", Length: "36.6cm"},
	28: {Comparison: "Eggplant", Weight: "1kg", Length: "37.6cm"},
	29: {Comparison: "Butternut squash", Weight: "1.15kg", Length: "38.6cm"},
	30: {Comparison: "Cabbage", Weight: "1.3kg", Length: "39.9cm"},
	31: {Comparison: "Coconut", Weight: "1.5kg", Length: "41.1cm"},
	32: {Comparison: "Squash", Weight: "1.7kg", Length: "42.4cm"},
	33: {Comparison: "Pineapple", Weight: "1.9kg", Length: "43.7cm"},
	34: {Comparison: "Cantaloupe", Weight: "2.1kg", Length: "45cm"},
	35: {Comparison: "Honeydew melon", Weight: "2.4kg", Length: "46.2cm"},
	36: {Comparison: "Romaine lettuce", Weight: "2.6kg", Length: "47.4cm"},
	37: {Comparison: "Swiss chard", Weight: "2.9kg", Length: "48.6cm"},
	38: {Comparison: "Leek", Weight: "3.1kg", Length: "49.8cm"},
	39: {Comparison: "Watermelon", Weight: "3.3kg", Length: "50.7cm"},
	40: {Comparison: "Watermelon", Weight: "3.4kg", Length: "51.2cm"},
}

// SizeForWeek returns the size comparison for a week. Out-of-range weeks
// clamp to the nearest bound so image strategies always have data.
func SizeForWeek(week int) model.BabySize {
	if week < model.MinWeek {
		week = model.MinWeek
	}
	if week > model.MaxWeek {
		week = model.MaxWeek
	}
	return sizeTable[week]
}

type weekDetail struct {
	developments []model.Development
	symptoms     []string
	tips         []string
}

// weekDetails carries the per-week reference content. Weeks without a
// dedicated entry fall back to their trimester's template.
var weekDetails = map[int]weekDetail{
	4: {
		developments: []model.Development{
			{Title: "Implantation", Description: "The embryo implants into the uterine lining and the placenta begins to form.", Icon: "🌱", Category: "growth"},
		},
		symptoms: []string{"Missed period", "Mild cramping"},
		tips:     []string{"Start a prenatal vitamin with folic acid"},
	},
	6: {
		developments: []model.Development{
			{Title: "Heartbeat begins", Description: "The neural tube closes and the heart starts to beat at a regular rhythm.", Icon: "💓", Category: "cardiac"},
		},
		symptoms: []string{"Morning sickness", "Fatigue", "Breast tenderness"},
		tips:     []string{"Eat small, frequent meals", "Rest when tired"},
	},
	8: {
		developments: []model.Development{
			{Title: "Limb buds form", Description: "Arms and legs are growing longer and fingers begin to form.", Icon: "🤚", Category: "growth"},
			{Title: "Facial features", Description: "Eyes, ears and the tip of the nose appear.", Icon: "👶", Category: "growth"},
		},
		symptoms: []string{"Nausea", "Food aversions", "Frequent urination"},
		tips:     []string{"Stay hydrated", "Schedule your first prenatal visit"},
	},
	10: {
		developments: []model.Development{
			{Title: "Vital organs formed", Description: "All vital organs are in place and starting to function together.", Icon: "🫀", Category: "organs"},
			{Title: "Bones hardening", Description: "Cartilage is being replaced by bone throughout the body.", Icon: "🦴", Category: "skeletal"},
		},
		symptoms: []string{"Round ligament pain", "Visible veins"},
		tips:     []string{"Begin gentle exercise like walking or prenatal yoga"},
	},
	12: {
		developments: []model.Development{
			{Title: "Reflexes develop", Description: "The baby can open and close fingers and curl toes.", Icon: "✋", Category: "neural"},
		},
		symptoms: []string{"Reduced nausea", "Increased energy"},
		tips:     []string{"First trimester screening is typically offered now"},
	},
	16: {
		developments: []model.Development{
			{Title: "First movements", Description: "Muscles strengthen and you may feel the first flutters of movement.", Icon: "🤸", Category: "muscular"},
		},
		symptoms: []string{"Backache", "Nasal congestion"},
		tips:     []string{"Sleep on your side with a pillow between your knees"},
	},
	20: {
		developments: []model.Development{
			{Title: "Anatomy scan window", Description: "Organs are developed enough for the detailed mid-pregnancy ultrasound.", Icon: "🩻", Category: "screening"},
			{Title: "Hearing develops", Description: "The baby begins responding to sounds from outside the womb.", Icon: "👂", Category: "sensory"},
		},
		symptoms: []string{"Noticeable kicks", "Leg cramps"},
		tips:     []string{"Schedule the anatomy ultrasound", "Stretch before bed to ease cramps"},
	},
	24: {
		developments: []model.Development{
			{Title: "Viability milestone", Description: "Lungs are developing surfactant and hearing is fully formed.", Icon: "🫁", Category: "respiratory"},
		},
		symptoms: []string{"Swollen ankles", "Braxton Hicks contractions"},
		tips:     []string{"Glucose screening is typically done between weeks 24 and 28"},
	},
	28: {
		developments: []model.Development{
			{Title: "Eyes open", Description: "Eyelids open and the baby practices blinking and breathing movements.", Icon: "👁️", Category: "sensory"},
		},
		symptoms: []string{"Shortness of breath", "Heartburn"},
		tips:     []string{"Start counting daily kicks", "Eat smaller meals to ease heartburn"},
	},
	32: {
		developments: []model.Development{
			{Title: "Rapid weight gain", Description: "The baby gains weight quickly and skin becomes smooth and plump.", Icon: "📈", Category: "growth"},
		},
		symptoms: []string{"Frequent urination", "Trouble sleeping"},
		tips:     []string{"Prenatal visits typically move to every two weeks"},
	},
	36: {
		developments: []model.Development{
			{Title: "Head-down position", Description: "Most babies settle head-down in preparation for birth.", Icon: "🔄", Category: "positioning"},
		},
		symptoms: []string{"Pelvic pressure", "Increased discharge"},
		tips:     []string{"Pack your hospital bag", "Review your birth plan with your provider"},
	},
	40: {
		developments: []model.Development{
			{Title: "Full term", Description: "The baby is fully developed and ready to be born.", Icon: "🎉", Category: "birth"},
		},
		symptoms: []string{"Contractions", "Lightening"},
		tips:     []string{"Know the signs of labor and when to go to the hospital"},
	},
}

var trimesterTemplates = map[int]weekDetail{
	1: {
		developments: []model.Development{
			{Title: "Early development", Description: "Major organs and body systems are forming rapidly.", Icon: "🌱", Category: "growth"},
		},
		symptoms: []string{"Fatigue", "Nausea", "Breast tenderness"},
		tips:     []string{"Take a daily prenatal vitamin", "Avoid alcohol and smoking"},
	},
	2: {
		developments: []model.Development{
			{Title: "Steady growth", Description: "The baby grows quickly and facial features become distinct.", Icon: "📏", Category: "growth"},
		},
		symptoms: []string{"Round ligament pain", "Increased appetite"},
		tips:     []string{"Stay active with low-impact exercise", "Eat iron-rich foods"},
	},
	3: {
		developments: []model.Development{
			{Title: "Final maturation", Description: "Lungs and brain mature in preparation for life outside the womb.", Icon: "🧠", Category: "growth"},
		},
		symptoms: []string{"Backache", "Swelling", "Braxton Hicks contractions"},
		tips:     []string{"Monitor fetal movement daily", "Rest with your feet elevated"},
	},
}

// BuiltinRecord assembles the reference record for one week from the
// built-in catalog.
func BuiltinRecord(week int) model.WeekRecord {
	record := model.WeekRecord{
		Week:     week,
		BabySize: SizeForWeek(week),
	}
	record.Normalize()

	detail, ok := weekDetails[week]
	if !ok {
		detail = trimesterTemplates[record.Trimester]
	}
	record.Developments = detail.developments
	record.Symptoms = detail.symptoms
	record.Tips = detail.tips
	return record
}

// BuiltinCatalog returns reference records for all 40 weeks.
func BuiltinCatalog() []model.WeekRecord {
	records := make([]model.WeekRecord, 0, model.MaxWeek)
	for week := model.MinWeek; week <= model.MaxWeek; week++ {
		records = append(records, BuiltinRecord(week))
	}
	return records
}
