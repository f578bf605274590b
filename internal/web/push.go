package web

import (
	"net/http"
	"strings"

	"github.com/edvart/cupkeeper/internal/push"
	"github.com/edvart/cupkeeper/internal/store"
)

type PushSubscriptionRequest struct {
	// UserID is the chat user the browser belongs to.
	UserID   string `json:"userId"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// handleSubscribePush registers a browser for a captain's turn notifications.
func (s *Server) handleSubscribePush(w http.ResponseWriter, r *http.Request) {
	var req PushSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.Endpoint == "" {
		http.Error(w, "userId and endpoint required", http.StatusBadRequest)
		return
	}

	sub := &store.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.store.SavePushSubscription(r.Context(), sub); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleUnsubscribePush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeletePushSubscription(r.Context(), req.Endpoint); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleGetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.pushService == nil || !s.pushService.Enabled() {
		http.Error(w, "Push notifications not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.pushService.GetPublicKey()})
}

// handleTestPush sends a test notification to one user.
func (s *Server) handleTestPush(w http.ResponseWriter, r *http.Request) {
	if s.pushService == nil || !s.pushService.Enabled() {
		http.Error(w, "Push notifications not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	payload := push.NotificationPayload{
		Title: "Test notification",
		Body:  "If you see this, push notifications are working!",
		Icon:  "/static/favicon.ico",
		Tag:   "test-notification",
		Data:  map[string]interface{}{"url": "/"},
	}
	if err := s.pushService.SendToUser(r.Context(), req.UserID, payload); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Test notification sent"})
}
