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

// SymptomLogRepository handles database operations for symptom diary
// entries. Entries are create-only; the schema has no update or delete.
type SymptomLogRepository struct {
	collection *mongo.Collection
}

func NewSymptomLogRepository(db *mongo.Database) *SymptomLogRepository {
	return &SymptomLogRepository{
		collection: db.Collection("symptom_logs"),
	}
}

// CreateLog inserts a new diary entry.
func (r *SymptomLogRepository) CreateLog(ctx context.Context, log *models.SymptomLog) (*models.SymptomLog, error) {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert symptom log")
		return nil, fmt.Errorf("failed to create symptom log: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	log.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"logID":  log.ID.Hex(),
		"userID": log.UserID.Hex(),
	}).Info("Symptom log created")
	return log, nil
}

// GetUserLogs returns a user's diary entries newest-first, up to limit.
func (r *SymptomLogRepository) GetUserLogs(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.SymptomLog, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch symptom logs: %v", err)
	}
	defer cursor.Close(ctx)

	var logs []models.SymptomLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode symptom logs: %v", err)
	}
	return logs, nil
}
