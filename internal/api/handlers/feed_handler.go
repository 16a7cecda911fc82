package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	ws "github.com/isdelr/estate-listing/internal/websocket"
	"github.com/rs/zerolog/log"
)

// FeedHandler upgrades buyers' browsers to the live listing feed.
type FeedHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler. Cross-origin connections are
// accepted only from allowedOrigins; with none, only same-host pages may
// connect.
func NewFeedHandler(hub *ws.Hub, allowedOrigins []string) *FeedHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		}
	}
	return &FeedHandler{hub: hub, upgrader: upgrader}
}

// Serve handles the WebSocket connection request.
func (h *FeedHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade feed connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	select {
	case h.hub.Register <- client:
	case <-h.hub.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
