package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

// InsightsHandler exposes the AI-backed analysis endpoints.
type InsightsHandler struct {
	Service     *services.InsightsService
	UserService *services.UserService
}

func NewInsightsHandler(service *services.InsightsService, userService *services.UserService) *InsightsHandler {
	return &InsightsHandler{
		Service:     service,
		UserService: userService,
	}
}

// GetPatternsHandler analyzes the user's recent symptom logs.
func (h *InsightsHandler) GetPatternsHandler(w http.ResponseWriter, r *http.Request) {
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

	patterns, err := h.Service.AnalyzeSymptomPatterns(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Pattern analysis failed")
		http.Error(w, "Pattern analysis is temporarily unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(patterns)
}

// GetRecommendationsHandler returns personalized management suggestions.
// Falls back to generic guidance when the model is unreachable.
func (h *InsightsHandler) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	recommendations := h.Service.GenerateRecommendations(r.Context(), user)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"recommendations": recommendations})
}

// SummarizeTrendHandler condenses a piece of health news for the user's
// conditions.
func (h *InsightsHandler) SummarizeTrendHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Title == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	summary, err := h.Service.SummarizeTrend(r.Context(), payload.Title, payload.Content, user.SelectedConditions)
	if err != nil {
		log.WithError(err).Error("Trend summary failed")
		http.Error(w, "Summary is temporarily unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"summary": summary})
}
