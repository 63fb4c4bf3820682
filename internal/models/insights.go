package models

// SymptomPattern is a pattern surfaced by the insights analysis.
type SymptomPattern struct {
	Pattern          string   `json:"pattern"`
	Frequency        int      `json:"frequency"`
	CommonTriggers   []string `json:"common_triggers"`
	SuggestedActions []string `json:"suggested_actions"`
	Confidence       float64  `json:"confidence"`
}
