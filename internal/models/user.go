package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus is the user's subscription tier. The only transition
// modeled is free -> premium; there is no downgrade path.
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
)

// NotificationPreferences holds the three independent opt-in flags.
type NotificationPreferences struct {
	HealthTrends     bool `bson:"health_trends" json:"health_trends"`
	SymptomReminders bool `bson:"symptom_reminders" json:"symptom_reminders"`
	ContentUpdates   bool `bson:"content_updates" json:"content_updates"`
}

// User represents a user account in HealthSync.
type User struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	Username                string                  `bson:"username" json:"username"`
	Email                   string                  `bson:"email,omitempty" json:"email,omitempty"`
	HashedPassword          string                  `bson:"hashed_password" json:"-"`
	Role                    string                  `bson:"role" json:"role"`
	SelectedConditions      []string                `bson:"selected_conditions" json:"selected_conditions"`
	NotificationPreferences NotificationPreferences `bson:"notification_preferences" json:"notification_preferences"`
	SubscriptionStatus      SubscriptionStatus      `bson:"subscription_status" json:"subscription_status"`
	IsVerified              bool                    `bson:"is_verified" json:"is_verified"`
	VerifyToken             string                  `bson:"verify_token,omitempty" json:"-"`
	CreatedAt               time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time               `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

// IsPremium reports whether the user has an active premium subscription.
func (u *User) IsPremium() bool {
	return u.SubscriptionStatus == SubscriptionPremium
}
