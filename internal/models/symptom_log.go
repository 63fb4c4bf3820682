package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TreatmentResponse records how well a treatment worked, on a 1-10 scale.
type TreatmentResponse struct {
	Treatment     string `bson:"treatment" json:"treatment"`
	Effectiveness int    `bson:"effectiveness" json:"effectiveness"`
}

// SymptomLog is a single diary entry. Entries are created once, never
// mutated or deleted, and are owned exclusively by the creating user.
// Symptom and trigger names are free-form strings, not bound to the
// condition taxonomy.
type SymptomLog struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Timestamp          time.Time           `bson:"timestamp" json:"timestamp"`
	Symptoms           []string            `bson:"symptoms" json:"symptoms"`
	Triggers           []string            `bson:"triggers" json:"triggers"`
	TreatmentResponses []TreatmentResponse `bson:"treatment_responses" json:"treatment_responses"`
	Severity           int                 `bson:"severity" json:"severity"`
	Mood               int                 `bson:"mood,omitempty" json:"mood,omitempty"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Validate enforces the entry contract: at least one symptom, severity on the
// 1-10 scale, and mood/effectiveness on the same scale when present.
func (l *SymptomLog) Validate() error {
	if len(l.Symptoms) == 0 {
		return fmt.Errorf("%w: at least one symptom is required", ErrValidation)
	}
	for _, s := range l.Symptoms {
		if s == "" {
			return fmt.Errorf("%w: symptom names must not be empty", ErrValidation)
		}
	}
	if l.Severity < 1 || l.Severity > 10 {
		return fmt.Errorf("%w: severity must be between 1 and 10", ErrValidation)
	}
	if l.Mood != 0 && (l.Mood < 1 || l.Mood > 10) {
		return fmt.Errorf("%w: mood must be between 1 and 10", ErrValidation)
	}
	for _, tr := range l.TreatmentResponses {
		if tr.Treatment == "" {
			return fmt.Errorf("%w: treatment name must not be empty", ErrValidation)
		}
		if tr.Effectiveness < 1 || tr.Effectiveness > 10 {
			return fmt.Errorf("%w: treatment effectiveness must be between 1 and 10", ErrValidation)
		}
	}
	return nil
}
