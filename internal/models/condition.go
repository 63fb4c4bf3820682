package models

// Condition is a named chronic-health category used to match users to
// content. The taxonomy is fixed at build time.
type Condition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// HealthConditions is the supported condition taxonomy.
var HealthConditions = []Condition{
	{ID: "diabetes", Name: "Diabetes", Category: "Metabolic"},
	{ID: "migraines", Name: "Migraines", Category: "Neurological"},
	{ID: "hypertension", Name: "Hypertension", Category: "Cardiovascular"},
	{ID: "arthritis", Name: "Arthritis", Category: "Musculoskeletal"},
	{ID: "asthma", Name: "Asthma", Category: "Respiratory"},
	{ID: "depression", Name: "Depression", Category: "Mental Health"},
	{ID: "anxiety", Name: "Anxiety", Category: "Mental Health"},
	{ID: "ibs", Name: "IBS", Category: "Digestive"},
	{ID: "fibromyalgia", Name: "Fibromyalgia", Category: "Chronic Pain"},
	{ID: "chronic-fatigue", Name: "Chronic Fatigue", Category: "Systemic"},
}

var conditionIDs = func() map[string]struct{} {
	set := make(map[string]struct{}, len(HealthConditions))
	for _, c := range HealthConditions {
		set[c.ID] = struct{}{}
	}
	return set
}()

// ValidConditionID reports whether id belongs to the taxonomy.
func ValidConditionID(id string) bool {
	_, ok := conditionIDs[id]
	return ok
}

// CommonSymptoms, CommonTriggers and TreatmentOptions are the pick lists
// offered by the symptom logger UI. Logged values are not restricted to them.
var CommonSymptoms = []string{
	"Headache", "Fatigue", "Pain", "Nausea", "Dizziness", "Insomnia",
	"Anxiety", "Mood Changes", "Digestive Issues", "Muscle Tension",
	"Joint Pain", "Shortness of Breath", "Heart Palpitations", "Brain Fog",
}

var CommonTriggers = []string{
	"Stress", "Weather Changes", "Certain Foods", "Lack of Sleep",
	"Physical Activity", "Hormonal Changes", "Dehydration", "Alcohol",
	"Caffeine", "Screen Time", "Social Situations", "Work Pressure",
}

var TreatmentOptions = []string{
	"Medication", "Rest", "Exercise", "Meditation", "Therapy",
	"Dietary Changes", "Hydration", "Heat/Cold Therapy", "Massage",
	"Breathing Exercises", "Supplements", "Sleep Hygiene",
}
