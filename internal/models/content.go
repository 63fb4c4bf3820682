package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentType string

const (
	ContentArticle  ContentType = "article"
	ContentVideo    ContentType = "video"
	ContentResearch ContentType = "research"
)

// Content is a curated catalog item. Content is immutable once created:
// there are no update or delete operations anywhere in the system.
// An empty RelevantConditions set means the item is universally relevant.
type Content struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	URL                string             `bson:"url" json:"url"`
	Type               ContentType        `bson:"type" json:"type"`
	Summary            string             `bson:"summary" json:"summary"`
	RelevantConditions []string           `bson:"relevant_conditions" json:"relevant_conditions"`
	Author             string             `bson:"author,omitempty" json:"author,omitempty"`
	PublishedAt        time.Time          `bson:"published_at" json:"published_at"`
	ReadingTime        int                `bson:"reading_time,omitempty" json:"reading_time,omitempty"`
	IsPremium          bool               `bson:"is_premium" json:"is_premium"`
}

// Validate checks the field contract before a content item enters the catalog.
func (c *Content) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: content title is required", ErrValidation)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: content url is required", ErrValidation)
	}
	switch c.Type {
	case ContentArticle, ContentVideo, ContentResearch:
	default:
		return fmt.Errorf("%w: unknown content type %q", ErrValidation, c.Type)
	}
	if c.ReadingTime < 0 {
		return fmt.Errorf("%w: reading time must be a positive number of minutes", ErrValidation)
	}
	for _, id := range c.RelevantConditions {
		if !ValidConditionID(id) {
			return fmt.Errorf("%w: unknown condition %q", ErrValidation, id)
		}
	}
	return nil
}
