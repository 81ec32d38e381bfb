package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/room"
)

// Handler upgrades HTTP requests into room channels, routing each
// connection to its room by game slug.
type Handler struct {
	manager  *room.Manager
	upgrader websocket.Upgrader
	cfg      ConnectionConfig
}

// NewHandler creates the WebSocket handler in front of a room registry.
func NewHandler(manager *room.Manager, cfg ConnectionConfig) *Handler {
	return &Handler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg: cfg,
	}
}

// HandleRoomConnection upgrades a request and attaches the resulting
// channel to the room named by the slug query parameter.
func (h *Handler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "slug is required", http.StatusBadRequest)
		return
	}

	rm := h.manager.GetOrCreate(r.Context(), slug)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("websocket upgrade failed")
		return
	}

	c := newConnection(conn, rm, h.cfg)
	rm.Attach(c)

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.id).
		Str("slug", slug).
		Msg("websocket connection established")
}

// HandleStats reports per-room channel counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.manager.Stats()

	total := 0
	for _, count := range stats {
		total += count
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"total_connections": total,
		"active_rooms":      len(stats),
		"room_connections":  stats,
	}); err != nil {
		log.Error().Err(err).Msg("failed to write stats response")
	}
}

// RegisterRoutes registers the WebSocket routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleRoomConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
