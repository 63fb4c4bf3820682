package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vistara-apps/healthsync/internal/models"
)

// In-memory store fakes backing the service tests. They mirror the Mongo
// repositories' observable behavior, including returning mongo.ErrNoDocuments
// for missing documents.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return user, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerifyToken != "" && u.VerifyToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for field, value := range update {
		switch field {
		case "username":
			u.Username = value.(string)
		case "email":
			u.Email = value.(string)
		case "subscription_status":
			u.SubscriptionStatus = value.(models.SubscriptionStatus)
		case "selected_conditions":
			u.SelectedConditions = value.([]string)
		case "notification_preferences":
			u.NotificationPreferences = value.(models.NotificationPreferences)
		case "is_verified":
			u.IsVerified = value.(bool)
		case "verify_token":
			u.VerifyToken = value.(string)
		case "updated_at":
			u.UpdatedAt = value.(time.Time)
		}
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type fakeContentStore struct {
	items []models.Content
}

func (f *fakeContentStore) CreateContent(ctx context.Context, content *models.Content) (*models.Content, error) {
	if content.ID.IsZero() {
		content.ID = primitive.NewObjectID()
	}
	f.items = append(f.items, *content)
	return content, nil
}

func (f *fakeContentStore) GetContentByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContentStore) GetAllContent(ctx context.Context, limit int64) ([]models.Content, error) {
	out := make([]models.Content, len(f.items))
	copy(out, f.items)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeContentStore) GetContentSince(ctx context.Context, since time.Time) ([]models.Content, error) {
	var out []models.Content
	for _, item := range f.items {
		if item.PublishedAt.After(since) {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeSymptomLogStore struct {
	logs []models.SymptomLog
}

func (f *fakeSymptomLogStore) CreateLog(ctx context.Context, log *models.SymptomLog) (*models.SymptomLog, error) {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	f.logs = append(f.logs, *log)
	return log, nil
}

func (f *fakeSymptomLogStore) GetUserLogs(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.SymptomLog, error) {
	var out []models.SymptomLog
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAlertStore struct {
	alerts []models.HealthTrendAlert
}

func (f *fakeAlertStore) CreateAlert(ctx context.Context, alert *models.HealthTrendAlert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertStore) GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.HealthTrendAlert, error) {
	var out []models.HealthTrendAlert
	for _, a := range f.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.HealthTrendAlert, error) {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			cp := f.alerts[i]
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeAlertStore) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range f.alerts {
		if a.UserID == userID && !a.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeAlertStore) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Read = true
			return nil
		}
	}
	return nil
}

func (f *fakeAlertStore) DeleteAlert(ctx context.Context, id primitive.ObjectID) error {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeAlertStore) HasAlertForSource(ctx context.Context, userID primitive.ObjectID, sourceURL string) (bool, error) {
	for _, a := range f.alerts {
		if a.UserID == userID && a.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}

// fakeNotifier records lifecycle pushes.
type fakeNotifier struct {
	mu           sync.Mutex
	created      []models.HealthTrendAlert
	unreadCounts []int64
}

func (n *fakeNotifier) AlertCreated(alert models.HealthTrendAlert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, alert)
}

func (n *fakeNotifier) UnreadCountChanged(userID string, unread int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unreadCounts = append(n.unreadCounts, unread)
}

func (n *fakeNotifier) lastUnread() (int64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.unreadCounts) == 0 {
		return 0, false
	}
	return n.unreadCounts[len(n.unreadCounts)-1], true
}
