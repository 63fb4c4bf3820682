package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
)

const defaultFeedLimit = 20

// FeedItem is a catalog item as the rendering layer sees it: relevance
// already applied, with the gate's access decision attached.
type FeedItem struct {
	models.Content
	Locked bool `json:"locked"`
}

// ContentService builds per-user content feeds from the catalog.
type ContentService struct {
	store ContentStore
}

func NewContentService(store ContentStore) *ContentService {
	return &ContentService{store: store}
}

// CreateContent adds a new item to the catalog. Items are immutable
// afterwards.
func (s *ContentService) CreateContent(ctx context.Context, content *models.Content) (*models.Content, error) {
	if err := content.Validate(); err != nil {
		logrus.WithError(err).Warn("Rejected invalid content")
		return nil, err
	}
	return s.store.CreateContent(ctx, content)
}

// GetFeed returns the user's visible catalog newest-first. Every item passed
// the relevance filter; premium items a free user cannot open carry
// Locked=true instead of being hidden.
func (s *ContentService) GetFeed(ctx context.Context, user *models.User, limit int64) ([]FeedItem, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	catalog, err := s.store.GetAllContent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %v", err)
	}

	visible := FilterByConditions(catalog, user.SelectedConditions)

	feed := make([]FeedItem, 0, len(visible))
	for _, item := range visible {
		feed = append(feed, FeedItem{
			Content: item,
			Locked:  !CanAccess(user.SubscriptionStatus, item.IsPremium),
		})
	}

	logrus.WithFields(logrus.Fields{
		"userID":  user.ID.Hex(),
		"catalog": len(catalog),
		"visible": len(feed),
	}).Info("Content feed built")
	return feed, nil
}

// GetContent returns a single item if the user's subscription admits access.
// A gated item yields ErrPremiumLocked.
func (s *ContentService) GetContent(ctx context.Context, user *models.User, id primitive.ObjectID) (*models.Content, error) {
	content, err := s.store.GetContentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(user.SubscriptionStatus, content.IsPremium) {
		logrus.WithFields(logrus.Fields{
			"userID":    user.ID.Hex(),
			"contentID": id.Hex(),
		}).Info("Premium content access denied")
		return nil, ErrPremiumLocked
	}
	return content, nil
}
