package services

import (
	"context"
	"fmt"

	"github.com/isdelr/estate-listing/internal/models"
	"github.com/jmoiron/sqlx"
)

// Event types recorded by the application.
const (
	EventUserRegistered  = "user.register"
	EventUserLoggedIn    = "user.login"
	EventPropertyCreated = "property.create"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, message string, userID *int64) error
	GetRecentEventsForUser(ctx context.Context, userID int64, limit int) ([]models.Event, error)
}

// EventService records site activity shown on the dashboard.
type EventService struct {
	db *sqlx.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sqlx.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, message string, userID *int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (type, message, user_id) VALUES (?, ?, ?)",
		eventType, message, userID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetRecentEventsForUser retrieves the most recent events recorded for one
// user, newest first. Anonymous events are never included.
func (s *EventService) GetRecentEventsForUser(ctx context.Context, userID int64, limit int) ([]models.Event, error) {
	events := []models.Event{}
	err := s.db.SelectContext(ctx, &events,
		"SELECT id, type, message, user_id, created_at FROM events WHERE user_id = ? ORDER BY id DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
