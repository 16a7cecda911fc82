package handlers

import (
	"bytes"
	"net/http"

	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/web"
	"github.com/rs/zerolog/log"
)

// Responder renders pages and redirects, carrying flash messages through
// the session.
type Responder struct {
	renderer *web.Renderer
	sessions *auth.SessionManager
}

// NewResponder creates a new Responder.
func NewResponder(renderer *web.Renderer, sessions *auth.SessionManager) *Responder {
	return &Responder{renderer: renderer, sessions: sessions}
}

type errorData struct {
	Status  int
	Message string
}

// Render writes template name with data. Pending flashes are shown and
// consumed.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	sess := auth.FromContext(r.Context())
	flashes := sess.PopFlashes()

	var buf bytes.Buffer
	page := web.Page{Flashes: flashes, LoggedIn: sess.Authenticated(), Data: data}
	if err := rs.renderer.Render(&buf, name, page); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(flashes) > 0 {
		if err := rs.sessions.Save(w, sess); err != nil {
			log.Error().Err(err).Msg("Failed to save session")
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Redirect saves the session with any flash messages and sends a 302.
func (rs *Responder) Redirect(w http.ResponseWriter, r *http.Request, url string, flashes ...string) {
	sess := auth.FromContext(r.Context())
	for _, msg := range flashes {
		sess.Flash(msg)
	}
	if err := rs.sessions.Save(w, sess); err != nil {
		rs.ServerError(w, r, err, "Failed to save session")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Error renders the error page with status and a user-facing message.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rs.Render(w, r, status, "error", errorData{Status: status, Message: message})
}

// ServerError logs err and answers with a generic 500 page.
func (rs *Responder) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(msg)
	rs.Error(w, r, http.StatusInternalServerError, "Something went wrong on our side. Please try again.")
}

// NotFound renders the 404 page.
func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, http.StatusNotFound, "Page not found.")
}
