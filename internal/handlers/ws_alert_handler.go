package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/vistara-apps/healthsync/internal/models"
	jwtutil "github.com/vistara-apps/healthsync/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertHub pushes alert lifecycle events to connected clients. One socket
// per user; a user reconnecting replaces the previous socket. It implements
// services.AlertNotifier.
type AlertHub struct {
	JWTSecret string

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewAlertHub(jwtSecret string) *AlertHub {
	return &AlertHub{
		JWTSecret: jwtSecret,
		clients:   make(map[string]*websocket.Conn),
	}
}

// AlertCreated pushes a freshly ingested alert to its owner, if connected.
func (h *AlertHub) AlertCreated(alert models.HealthTrendAlert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.clients[alert.UserID.Hex()]
	if !ok {
		return
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"type":  "alert",
		"alert": alert,
	}); err != nil {
		log.WithError(err).Warn("Failed to push alert over WebSocket")
	}
}

// UnreadCountChanged pushes the derived unread count after any lifecycle
// transition.
func (h *AlertHub) UnreadCountChanged(userID string, unread int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.clients[userID]
	if !ok {
		return
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"type":         "unread_count",
		"unread_count": unread,
	}); err != nil {
		log.WithError(err).Warn("Failed to push unread count over WebSocket")
	}
}

// AlertStreamHandler upgrades the connection and keeps it open until the
// client goes away. The token travels in the query string because browsers
// cannot set headers on WebSocket dials.
func (h *AlertHub) AlertStreamHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	if prev, ok := h.clients[userID]; ok {
		prev.Close()
	}
	h.clients[userID] = conn
	h.mu.Unlock()
	log.WithField("userID", userID).Info("Alert stream connected")

	defer func() {
		h.mu.Lock()
		if h.clients[userID] == conn {
			delete(h.clients, userID)
		}
		h.mu.Unlock()
		conn.Close()
		log.WithField("userID", userID).Info("Alert stream disconnected")
	}()

	// The stream is push-only; reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
