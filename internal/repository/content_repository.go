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

// ContentRepository handles database operations for the content catalog.
// The catalog is append-only: items are never updated or deleted.
type ContentRepository struct {
	collection *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{
		collection: db.Collection("content"),
	}
}

// CreateContent inserts a new catalog item.
func (r *ContentRepository) CreateContent(ctx context.Context, content *models.Content) (*models.Content, error) {
	if content.PublishedAt.IsZero() {
		content.PublishedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, content)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert content")
		return nil, fmt.Errorf("failed to create content: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	content.ID = insertedID

	logrus.WithField("contentID", content.ID.Hex()).Info("Content created")
	return content, nil
}

// GetContentByID retrieves a single catalog item.
func (r *ContentRepository) GetContentByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	var content models.Content
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if err != nil {
		return nil, fmt.Errorf("failed to find content by id: %v", err)
	}
	return &content, nil
}

// GetAllContent returns the catalog newest-first, up to limit items.
func (r *ContentRepository) GetAllContent(ctx context.Context, limit int64) ([]models.Content, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %v", err)
	}
	defer cursor.Close(ctx)

	var items []models.Content
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode content: %v", err)
	}
	return items, nil
}

// GetContentSince returns items published after the given time, newest-first.
// Feeds the trend-alert ingestion scan.
func (r *ContentRepository) GetContentSince(ctx context.Context, since time.Time) ([]models.Content, error) {
	filter := bson.M{"published_at": bson.M{"$gt": since}}
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent content: %v", err)
	}
	defer cursor.Close(ctx)

	var items []models.Content
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode recent content: %v", err)
	}
	return items, nil
}
