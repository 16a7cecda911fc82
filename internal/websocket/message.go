package websocket

import "github.com/isdelr/estate-listing/internal/models"

// ActionConnected is the first message on every connection.
const ActionConnected = "connected"

// ActionPropertyCreated is sent when a seller lists a new property.
const ActionPropertyCreated = "property_created"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// ListingPayload is the public summary of a property pushed to buyers.
type ListingPayload struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}

// NewPropertyCreatedMessage builds the feed message for p. Only the first
// image is included.
func NewPropertyCreatedMessage(p models.Property) Message {
	payload := ListingPayload{ID: p.ID, Title: p.Title, Location: p.Location, Price: p.Price}
	if len(p.Images) > 0 {
		payload.Image = "/" + p.Images[0]
	}
	return Message{Action: ActionPropertyCreated, Payload: payload}
}
