package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// SymptomService handles the symptom diary. Entries are validated before
// they reach storage and are immutable afterwards.
type SymptomService struct {
	store SymptomLogStore
}

func NewSymptomService(store SymptomLogStore) *SymptomService {
	return &SymptomService{store: store}
}

// CreateLog validates and saves a diary entry for the user. An invalid entry
// is rejected before reaching storage and nothing is added to the user's
// collection.
func (s *SymptomService) CreateLog(ctx context.Context, userID primitive.ObjectID, log *models.SymptomLog) (*models.SymptomLog, error) {
	log.UserID = userID
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	if err := log.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"error":  err,
		}).Warn("Rejected invalid symptom log")
		return nil, err
	}

	return s.store.CreateLog(ctx, log)
}

// GetLogs returns the user's own entries newest-first.
func (s *SymptomService) GetLogs(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.SymptomLog, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return s.store.GetUserLogs(ctx, userID, limit)
}
