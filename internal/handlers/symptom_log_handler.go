package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

// SymptomLogHandler handles the symptom diary endpoints.
type SymptomLogHandler struct {
	Service *services.SymptomService
}

func NewSymptomLogHandler(service *services.SymptomService) *SymptomLogHandler {
	return &SymptomLogHandler{Service: service}
}

// CreateLogHandler saves a new diary entry for the logged-in user.
func (h *SymptomLogHandler) CreateLogHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var entry models.SymptomLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.WithError(err).Warn("Failed to decode symptom log request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateLog(r.Context(), userID, &entry)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("Failed to create symptom log")
		http.Error(w, "Failed to save symptom log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetLogsHandler lists the logged-in user's diary entries newest-first.
func (h *SymptomLogHandler) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = parsed
		}
	}

	logs, err := h.Service.GetLogs(r.Context(), userID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch symptom logs")
		http.Error(w, "Failed to load symptom logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
