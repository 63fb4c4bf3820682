package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vistara-apps/healthsync/internal/models"
)

// AlertNotifier receives lifecycle events for live delivery (the WebSocket
// hub). May be nil when no live channel exists.
type AlertNotifier interface {
	AlertCreated(alert models.HealthTrendAlert)
	UnreadCountChanged(userID string, unread int64)
}

// AlertService owns the trend-alert lifecycle: unread -> read (idempotent),
// and dismissal, which removes the alert from the active collection for good.
type AlertService struct {
	store    AlertStore
	notifier AlertNotifier
}

func NewAlertService(store AlertStore, notifier AlertNotifier) *AlertService {
	return &AlertService{store: store, notifier: notifier}
}

// CreateAlert validates and stores a new alert, then pushes it to any live
// listeners. Alerts enter the system unread.
func (s *AlertService) CreateAlert(ctx context.Context, alert *models.HealthTrendAlert) error {
	alert.Read = false
	if err := alert.Validate(); err != nil {
		logrus.WithError(err).Warn("Rejected invalid alert")
		return err
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.AlertCreated(*alert)
		if unread, err := s.store.CountUnread(ctx, alert.UserID); err == nil {
			s.notifier.UnreadCountChanged(alert.UserID.Hex(), unread)
		}
	}
	return nil
}

// GetUserAlerts returns the active alerts newest-first together with the
// unread count, which is always derived from the live collection.
func (s *AlertService) GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]models.HealthTrendAlert, int64, error) {
	alerts, err := s.store.GetUserAlerts(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return alerts, unread, nil
}

// MarkAlertRead marks an alert read. Marking an already-read alert is a
// no-op, as is marking an alert that is no longer in the active collection.
func (s *AlertService) MarkAlertRead(ctx context.Context, userID, alertID primitive.ObjectID) error {
	alert, err := s.store.GetAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logrus.WithField("alertID", alertID.Hex()).Info("Mark-read on missing alert ignored")
			return nil
		}
		return err
	}
	if alert.UserID != userID {
		return ErrNotOwner
	}
	if alert.Read {
		return nil
	}

	if err := s.store.MarkAsRead(ctx, alertID); err != nil {
		return err
	}
	s.notifyUnread(ctx, userID)
	return nil
}

// DismissAlert removes an alert permanently. Dismissing an unknown alert is
// a no-op; there is no way to bring a dismissed alert back.
func (s *AlertService) DismissAlert(ctx context.Context, userID, alertID primitive.ObjectID) error {
	alert, err := s.store.GetAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logrus.WithField("alertID", alertID.Hex()).Info("Dismiss of missing alert ignored")
			return nil
		}
		return err
	}
	if alert.UserID != userID {
		return ErrNotOwner
	}

	if err := s.store.DeleteAlert(ctx, alertID); err != nil {
		return err
	}
	s.notifyUnread(ctx, userID)
	return nil
}

func (s *AlertService) notifyUnread(ctx context.Context, userID primitive.ObjectID) {
	if s.notifier == nil {
		return
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to recount unread alerts")
		return
	}
	s.notifier.UnreadCountChanged(userID.Hex(), unread)
}
