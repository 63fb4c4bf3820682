package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

// ContentHandler serves the per-user content feed and catalog ingestion.
type ContentHandler struct {
	Service     *services.ContentService
	UserService *services.UserService
}

func NewContentHandler(service *services.ContentService, userService *services.UserService) *ContentHandler {
	return &ContentHandler{
		Service:     service,
		UserService: userService,
	}
}

// GetFeedHandler returns the relevance-filtered catalog for the logged-in
// user. Premium items a free user cannot open are included but locked.
func (h *ContentHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
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

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = parsed
		}
	}

	feed, err := h.Service.GetFeed(r.Context(), user, limit)
	if err != nil {
		log.WithError(err).Error("Failed to build content feed")
		http.Error(w, "Failed to load content feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(feed)
}

// GetContentHandler returns a single catalog item, enforcing the
// subscription gate.
func (h *ContentHandler) GetContentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	contentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	content, err := h.Service.GetContent(r.Context(), user, contentID)
	if err != nil {
		if errors.Is(err, services.ErrPremiumLocked) {
			http.Error(w, "Premium subscription required", http.StatusPaymentRequired)
			return
		}
		http.Error(w, "Content not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(content)
}

// CreateContentHandler adds an item to the catalog. Ingestion/admin only.
func (h *ContentHandler) CreateContentHandler(w http.ResponseWriter, r *http.Request) {
	var content models.Content
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateContent(r.Context(), &content)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("Failed to create content")
		http.Error(w, "Failed to create content", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}
