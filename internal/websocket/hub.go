package websocket

import (
	"context"
	"encoding/json"

	"github.com/isdelr/estate-listing/internal/models"
	"github.com/rs/zerolog/log"
)

// broadcastBuffer bounds how many messages may wait for the hub loop before
// Publish starts dropping them.
const broadcastBuffer = 64

// connectedMessage is the encoded Message{Action: ActionConnected}.
var connectedMessage = []byte(`{"action":"` + ActionConnected + `","payload":null}`)

// Hub maintains the set of active feed clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Closed once Run returns.
	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is
// cancelled, disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			// Tells the client it will receive every later broadcast.
			client.Send <- connectedMessage
			log.Debug().Int("total_clients", len(h.clients)).Msg("Feed client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Debug().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow reader; drop it rather than stall the feed.
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Publish queues msg for every connected client. It never blocks: when the
// queue is full the message is dropped.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode feed message")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn().Str("action", msg.Action).Msg("Feed queue full, dropping message")
	}
}

// PublishListing announces a newly created property.
func (h *Hub) PublishListing(p models.Property) {
	h.Publish(NewPropertyCreatedMessage(p))
}
