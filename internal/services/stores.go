package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
)

// Services depend on narrow store interfaces rather than the concrete Mongo
// repositories so the business rules can be exercised against in-memory
// fakes. The repository package satisfies all of them.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

type ContentStore interface {
	CreateContent(ctx context.Context, content *models.Content) (*models.Content, error)
	GetContentByID(ctx context.Context, id primitive.ObjectID) (*models.Content, error)
	GetAllContent(ctx context.Context, limit int64) ([]models.Content, error)
	GetContentSince(ctx context.Context, since time.Time) ([]models.Content, error)
}

type SymptomLogStore interface {
	CreateLog(ctx context.Context, log *models.SymptomLog) (*models.SymptomLog, error)
	GetUserLogs(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.SymptomLog, error)
}

type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.HealthTrendAlert) error
	GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.HealthTrendAlert, error)
	GetAlertByID(ctx context.Context, id primitive.ObjectID) (*models.HealthTrendAlert, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	DeleteAlert(ctx context.Context, id primitive.ObjectID) error
	HasAlertForSource(ctx context.Context, userID primitive.ObjectID, sourceURL string) (bool, error)
}

// Sentinel errors for the service layer. Handlers map them to status codes;
// none of them is fatal to the process.
var (
	ErrNotOwner        = errors.New("resource belongs to another user")
	ErrPremiumLocked   = errors.New("premium subscription required")
	ErrPaymentInFlight = errors.New("a payment attempt is already in progress")
	ErrAlreadyPremium  = errors.New("subscription is already premium")
)
