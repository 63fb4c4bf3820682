package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/services"
)

type stubUserStore struct {
	users []*models.User
}

func (s *stubUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.users = append(s.users, user)
	return user, nil
}

func (s *stubUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	return s.GetUserByID(ctx, id)
}

func (s *stubUserStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.users, nil
}

type stubContentStore struct {
	fresh []models.Content
}

func (s *stubContentStore) CreateContent(ctx context.Context, content *models.Content) (*models.Content, error) {
	return content, nil
}

func (s *stubContentStore) GetContentByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubContentStore) GetAllContent(ctx context.Context, limit int64) ([]models.Content, error) {
	return s.fresh, nil
}

func (s *stubContentStore) GetContentSince(ctx context.Context, since time.Time) ([]models.Content, error) {
	return s.fresh, nil
}

type memAlertStore struct {
	alerts []models.HealthTrendAlert
}

func (s *memAlertStore) CreateAlert(ctx context.Context, alert *models.HealthTrendAlert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	s.alerts = append(s.alerts, *alert)
	return nil
}

func (s *memAlertStore) GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.HealthTrendAlert, error) {
	var out []models.HealthTrendAlert
	for _, a := range s.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memAlertStore) GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.HealthTrendAlert, error) {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			return &s.alerts[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memAlertStore) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range s.alerts {
		if a.UserID == userID && !a.Read {
			n++
		}
	}
	return n, nil
}

func (s *memAlertStore) MarkAsRead(ctx context.Context, id primitive.ObjectID) error { return nil }

func (s *memAlertStore) DeleteAlert(ctx context.Context, id primitive.ObjectID) error { return nil }

func (s *memAlertStore) HasAlertForSource(ctx context.Context, userID primitive.ObjectID, sourceURL string) (bool, error) {
	for _, a := range s.alerts {
		if a.UserID == userID && a.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}

func freshItem(title string, contentType models.ContentType, conditions []string) models.Content {
	return models.Content{
		ID:                 primitive.NewObjectID(),
		Title:              title,
		URL:                "https://example.com/" + title,
		Type:               contentType,
		Summary:            "summary of " + title,
		RelevantConditions: conditions,
		PublishedAt:        time.Now().Add(-time.Hour),
	}
}

func scanUser(conditions []string, wantsTrends bool) *models.User {
	return &models.User{
		ID:                 primitive.NewObjectID(),
		Username:           "u-" + primitive.NewObjectID().Hex()[:6],
		SelectedConditions: conditions,
		NotificationPreferences: models.NotificationPreferences{
			HealthTrends: wantsTrends,
		},
	}
}

func TestRunScan(t *testing.T) {
	ctx := context.Background()

	t.Run("matching content becomes an alert", func(t *testing.T) {
		user := scanUser([]string{"migraines"}, true)
		users := &stubUserStore{users: []*models.User{user}}
		content := &stubContentStore{fresh: []models.Content{
			freshItem("migraine-study", models.ContentResearch, []string{"migraines"}),
			freshItem("ibs-news", models.ContentArticle, []string{"ibs"}),
		}}
		alerts := &memAlertStore{}
		scanner := NewTrendScanner(users, content, alerts, services.NewAlertService(alerts, nil))

		require.NoError(t, scanner.RunScan(ctx))

		got, err := alerts.GetUserAlerts(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "migraine-study", got[0].Title)
		assert.Equal(t, models.AlertResearch, got[0].Category)
		assert.Equal(t, models.PriorityHigh, got[0].Priority)
		assert.False(t, got[0].Read)
	})

	t.Run("opted-out users are skipped", func(t *testing.T) {
		user := scanUser([]string{"migraines"}, false)
		users := &stubUserStore{users: []*models.User{user}}
		content := &stubContentStore{fresh: []models.Content{
			freshItem("migraine-study", models.ContentResearch, []string{"migraines"}),
		}}
		alerts := &memAlertStore{}
		scanner := NewTrendScanner(users, content, alerts, services.NewAlertService(alerts, nil))

		require.NoError(t, scanner.RunScan(ctx))
		assert.Empty(t, alerts.alerts)
	})

	t.Run("a source never alerts the same user twice", func(t *testing.T) {
		user := scanUser([]string{"migraines"}, true)
		users := &stubUserStore{users: []*models.User{user}}
		content := &stubContentStore{fresh: []models.Content{
			freshItem("migraine-study", models.ContentResearch, []string{"migraines"}),
		}}
		alerts := &memAlertStore{}
		scanner := NewTrendScanner(users, content, alerts, services.NewAlertService(alerts, nil))

		require.NoError(t, scanner.RunScan(ctx))
		require.NoError(t, scanner.RunScan(ctx))

		got, err := alerts.GetUserAlerts(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("no fresh content is a quiet no-op", func(t *testing.T) {
		user := scanUser([]string{"migraines"}, true)
		users := &stubUserStore{users: []*models.User{user}}
		alerts := &memAlertStore{}
		scanner := NewTrendScanner(users, &stubContentStore{}, alerts, services.NewAlertService(alerts, nil))

		require.NoError(t, scanner.RunScan(ctx))
		assert.Empty(t, alerts.alerts)
	})
}

func TestRelevanceScore(t *testing.T) {
	item := freshItem("x", models.ContentArticle, []string{"migraines", "anxiety"})

	assert.InDelta(t, 0.5, relevanceScore(item, []string{"migraines"}), 0.001)
	assert.InDelta(t, 1.0, relevanceScore(item, []string{"migraines", "anxiety"}), 0.001)
	assert.InDelta(t, 0.0, relevanceScore(item, nil), 0.001)

	universal := freshItem("y", models.ContentArticle, nil)
	assert.InDelta(t, 0.4, relevanceScore(universal, []string{"migraines"}), 0.001)
}

func TestCategoryAndPriorityMapping(t *testing.T) {
	assert.Equal(t, models.AlertResearch, categoryFor(models.ContentResearch))
	assert.Equal(t, models.AlertLifestyle, categoryFor(models.ContentVideo))
	assert.Equal(t, models.AlertTreatment, categoryFor(models.ContentArticle))

	assert.Equal(t, models.PriorityHigh, priorityFor(0.8))
	assert.Equal(t, models.PriorityMedium, priorityFor(0.5))
	assert.Equal(t, models.PriorityLow, priorityFor(0.2))
}
