package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertCategory string

const (
	AlertResearch   AlertCategory = "research"
	AlertTreatment  AlertCategory = "treatment"
	AlertLifestyle  AlertCategory = "lifestyle"
	AlertPrevention AlertCategory = "prevention"
)

type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
)

// HealthTrendAlert notifies a user about external health research or
// treatment news. Alerts start unread, can be marked read (idempotent), and
// leave the active collection permanently when dismissed. There is no
// tombstone; a dismissed alert cannot come back.
type HealthTrendAlert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	Title          string             `bson:"title" json:"title"`
	Summary        string             `bson:"summary" json:"summary"`
	SourceURL      string             `bson:"source_url" json:"source_url"`
	RelevanceScore float64            `bson:"relevance_score" json:"relevance_score"`
	Category       AlertCategory      `bson:"category" json:"category"`
	Read           bool               `bson:"read" json:"read"`
	Priority       AlertPriority      `bson:"priority" json:"priority"`
}

// Validate checks the alert field contract before ingestion.
func (a *HealthTrendAlert) Validate() error {
	if a.UserID.IsZero() {
		return fmt.Errorf("%w: alert owner is required", ErrValidation)
	}
	if a.Title == "" {
		return fmt.Errorf("%w: alert title is required", ErrValidation)
	}
	if a.RelevanceScore < 0 || a.RelevanceScore > 1 {
		return fmt.Errorf("%w: relevance score must be between 0 and 1", ErrValidation)
	}
	switch a.Category {
	case AlertResearch, AlertTreatment, AlertLifestyle, AlertPrevention:
	default:
		return fmt.Errorf("%w: unknown alert category %q", ErrValidation, a.Category)
	}
	switch a.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("%w: unknown alert priority %q", ErrValidation, a.Priority)
	}
	return nil
}
