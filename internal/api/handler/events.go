package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cardroom/cardroom/internal/api/response"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
)

// keepalivePeriod is the interval between SSE keepalive comments
const keepalivePeriod = 15 * time.Second

// EventsHandler streams committed snapshots to clients as server-sent
// events. Each event carries the full state of one entity, so a client that
// connects mid-session catches up from its next delivery.
type EventsHandler struct {
	bus *feed.Bus
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *feed.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// StreamGames handles GET /api/v1/games/events, the collection-level stream
func (h *EventsHandler) StreamGames(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, feed.GamesTopic)
}

// StreamGame handles GET /api/v1/games/{id}/events, one game's snapshots
// and roster records
func (h *EventsHandler) StreamGame(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])
	h.stream(w, r, feed.GameTopic(gameID), feed.RosterTopic(gameID))
}

func (h *EventsHandler) stream(w http.ResponseWriter, r *http.Request, topics ...feed.Topic) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.bus.Subscribe(topics...)
	defer sub.Close()

	_, _ = w.Write(feed.FormatSSE("connected", `{"status":"connected"}`))
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			payload, err := encodeEvent(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write(feed.Keepalive); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func encodeEvent(ev feed.Event) ([]byte, error) {
	switch {
	case ev.Game != nil:
		data, err := json.Marshal(response.GameFromModel(ev.Game))
		if err != nil {
			return nil, err
		}
		return feed.FormatSSE("game", string(data)), nil
	case ev.Player != nil:
		data, err := json.Marshal(response.PlayerFromModel(ev.Player))
		if err != nil {
			return nil, err
		}
		return feed.FormatSSE("player", string(data)), nil
	default:
		return feed.Keepalive, nil
	}
}
