package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// PageHandler serves the static informational pages.
type PageHandler struct {
	*Responder
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(rs *Responder) *PageHandler {
	return &PageHandler{Responder: rs}
}

// Home renders the landing page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "home", nil)
}

// AboutUs renders the about page.
func (h *PageHandler) AboutUs(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "aboutus", nil)
}

// ContactUs renders the contact page.
func (h *PageHandler) ContactUs(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "contactus", nil)
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the database answers.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}
}
