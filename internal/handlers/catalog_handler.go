package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vistara-apps/healthsync/internal/models"
)

// CatalogHandler serves the static pick lists used by onboarding and the
// symptom logger.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetConditionsHandler returns the condition taxonomy.
func (h *CatalogHandler) GetConditionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.HealthConditions)
}

// GetLoggerOptionsHandler returns the symptom, trigger and treatment pick
// lists for the logging UI.
func (h *CatalogHandler) GetLoggerOptionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"symptoms":   models.CommonSymptoms,
		"triggers":   models.CommonTriggers,
		"treatments": models.TreatmentOptions,
	})
}
