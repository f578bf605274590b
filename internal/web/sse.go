package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/coordinator"
)

// MatchLister gives the SSE hub the live matches for a new client.
type MatchLister interface {
	GetMatches() []coordinator.MatchInfo
}

// SSEClient represents a connected SSE client.
type SSEClient struct {
	ID string
	// MatchID limits the stream to one match when set.
	MatchID string
	Channel chan []byte
}

// SSEHub fans coordinator events out to connected browsers as JSON.
type SSEHub struct {
	clients map[*SSEClient]bool
	mu      sync.RWMutex
	matches MatchLister
	log     *logrus.Entry
}

// sseMessage is one frame on the wire.
type sseMessage struct {
	Type    string      `json:"type"`
	MatchID string      `json:"matchId,omitempty"`
	Data    interface{} `json:"data"`
}

func NewSSEHub(matches MatchLister, log *logrus.Entry) *SSEHub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SSEHub{
		clients: make(map[*SSEClient]bool),
		matches: matches,
		log:     log.WithField("component", "sse"),
	}
}

// Run starts the SSE hub, processing events from the coordinator.
func (h *SSEHub) Run(events <-chan coordinator.Event) {
	h.log.Info("SSE hub started")
	for event := range events {
		h.broadcast(event)
	}
}

func (h *SSEHub) broadcast(event coordinator.Event) {
	msg, ok := toMessage(event)
	if !ok {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Errorf("Failed to encode %T", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.MatchID != "" && client.MatchID != msg.MatchID {
			continue
		}
		select {
		case client.Channel <- payload:
		default:
			h.log.Warnf("Dropping message for slow client %s", client.ID)
		}
	}
}

func toMessage(event coordinator.Event) (sseMessage, bool) {
	switch e := event.(type) {
	case coordinator.MatchCreated:
		return sseMessage{Type: "match_created", MatchID: e.Match.ID, Data: e.Match}, true
	case coordinator.MatchRestored:
		return sseMessage{Type: "match_restored", MatchID: e.Match.ID, Data: e.Match}, true
	case coordinator.StatusUpdated:
		return sseMessage{Type: "status", MatchID: e.MatchID, Data: e.Status}, true
	case coordinator.TurnPrompted:
		return sseMessage{Type: "turn", MatchID: e.MatchID, Data: e.Prompt}, true
	case coordinator.SequenceFinished:
		return sseMessage{Type: "summary", MatchID: e.MatchID, Data: e.Summary}, true
	case coordinator.StreamAnnounced:
		return sseMessage{Type: "stream", MatchID: e.MatchID, Data: map[string]string{"url": e.URL}}, true
	case coordinator.MatchRemoved:
		return sseMessage{Type: "match_removed", MatchID: e.MatchID, Data: nil}, true
	default:
		return sseMessage{}, false
	}
}

func (h *SSEHub) snapshot(matchID string) []byte {
	infos := h.matches.GetMatches()
	if matchID != "" {
		filtered := infos[:0]
		for _, m := range infos {
			if m.ID == matchID {
				filtered = append(filtered, m)
			}
		}
		infos = filtered
	}
	payload, err := json.Marshal(sseMessage{Type: "snapshot", MatchID: matchID, Data: infos})
	if err != nil {
		h.log.WithError(err).Error("Failed to encode snapshot")
		return nil
	}
	return payload
}

// ClientCount returns the number of connected clients.
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection streams events until the client disconnects.
func (h *SSEHub) HandleConnection(w http.ResponseWriter, r *http.Request, matchID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &SSEClient{
		ID:      uuid.New().String(),
		MatchID: matchID,
		Channel: make(chan []byte, 32),
	}

	// The channel is never closed: broadcast may still hold a reference
	// after the client is unregistered.
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.log.Debugf("SSE client disconnected: %s", client.ID)
	}()
	h.log.Debugf("SSE client connected: %s (match: %q)", client.ID, matchID)

	fmt.Fprintf(w, ": connected\n\n")
	if initial := h.snapshot(matchID); initial != nil {
		fmt.Fprintf(w, "data: %s\n\n", initial)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-client.Channel:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
