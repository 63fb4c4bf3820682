package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

// PaymentHandler drives the premium upgrade flow for the payment modal.
type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: service}
}

func paymentCaller(r *http.Request) (primitive.ObjectID, bool) {
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

// AttemptPaymentHandler starts a payment attempt. Returns 409 while a prior
// attempt is still processing.
func (h *PaymentHandler) AttemptPaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := paymentCaller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flow, err := h.Service.AttemptPayment(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, services.ErrAlreadyPremium):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.WithError(err).Error("Failed to start payment attempt")
			http.Error(w, "Failed to start payment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(flow)
}

// PaymentStatusHandler returns the current flow snapshot for polling.
func (h *PaymentHandler) PaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := paymentCaller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.FlowStatus(userID))
}

// CancelPaymentHandler resets the flow to idle, aborting any in-flight
// attempt. Used when the payment modal is closed.
func (h *PaymentHandler) CancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := paymentCaller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.Service.CancelPayment(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Payment flow reset"})
}
