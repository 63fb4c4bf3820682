package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

// AlertHandler handles trend alert endpoints.
type AlertHandler struct {
	Service *services.AlertService
}

func NewAlertHandler(service *services.AlertService) *AlertHandler {
	return &AlertHandler{Service: service}
}

func callerID(r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// GetAlertsHandler returns the user's active alerts with the derived unread
// count.
func (h *AlertHandler) GetAlertsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	alerts, unread, err := h.Service.GetUserAlerts(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch alerts")
		http.Error(w, "Failed to get alerts", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []models.HealthTrendAlert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts":       alerts,
		"unread_count": unread,
	})
}

// MarkAsReadHandler marks an alert read. Repeating it, or aiming at a
// dismissed alert, is a harmless no-op.
func (h *AlertHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	alertID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkAlertRead(r.Context(), userID, alertID); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.WithError(err).Error("Failed to mark alert as read")
		http.Error(w, "Failed to mark as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Alert marked as read"})
}

// DismissAlertHandler removes an alert permanently.
func (h *AlertHandler) DismissAlertHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	alertID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DismissAlert(r.Context(), userID, alertID); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		log.WithError(err).Error("Failed to dismiss alert")
		http.Error(w, "Failed to dismiss alert", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Alert dismissed"})
}

// CreateAlertHandler ingests an alert for a user. Admin/ingestion only.
func (h *AlertHandler) CreateAlertHandler(w http.ResponseWriter, r *http.Request) {
	var alert models.HealthTrendAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.CreateAlert(r.Context(), &alert); err != nil {
		if errors.Is(err, models.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("Failed to create alert")
		http.Error(w, "Failed to create alert", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(alert)
}
