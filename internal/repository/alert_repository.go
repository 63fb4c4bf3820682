package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vistara-apps/healthsync/internal/models"
)

// AlertRepository handles database operations for health trend alerts.
// Dismissal is a hard delete; there is no tombstone collection.
type AlertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{
		collection: db.Collection("health_trend_alerts"),
	}
}

// CreateAlert inserts a new alert for a user.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.HealthTrendAlert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert alert")
		return fmt.Errorf("failed to create alert: %v", err)
	}
	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		alert.ID = insertedID
	}
	return nil
}

// GetUserAlerts returns all active alerts for a user, newest first.
func (r *AlertRepository) GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.HealthTrendAlert, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %v", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.HealthTrendAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %v", err)
	}
	return alerts, nil
}

// GetAlertByID retrieves a single active alert. Returns mongo.ErrNoDocuments
// when the alert is not in the active collection.
func (r *AlertRepository) GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.HealthTrendAlert, error) {
	var alert models.HealthTrendAlert
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// CountUnread counts active alerts with read == false. The unread count is
// always derived from the live collection, never stored.
func (r *AlertRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %v", err)
	}
	return count, nil
}

// MarkAsRead sets the alert's read flag. Setting it on an already-read or
// missing alert matches zero or an unchanged document, which keeps the
// operation idempotent.
func (r *AlertRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteAlert removes an alert from the active collection permanently.
func (r *AlertRepository) DeleteAlert(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// HasAlertForSource reports whether the user already has an alert pointing at
// the given source URL. The trend scanner uses this to avoid duplicates.
func (r *AlertRepository) HasAlertForSource(ctx context.Context, userID primitive.ObjectID, sourceURL string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "source_url": sourceURL})
	if err != nil {
		return false, fmt.Errorf("failed to check alert source: %v", err)
	}
	return count > 0, nil
}
