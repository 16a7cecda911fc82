package models

import "time"

// Event represents a recorded site action.
type Event struct {
	ID        int64     `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"` // e.g., "user.register", "property.create"
	Message   string    `db:"message" json:"message"`
	UserID    *int64    `db:"user_id" json:"userId,omitempty"` // Nil for anonymous actions
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
