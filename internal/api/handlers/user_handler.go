package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/models"
	"github.com/isdelr/estate-listing/internal/services"
	"github.com/rs/zerolog/log"
)

const recentEventsLimit = 10

// UserHandler handles registration, login and the dashboard.
type UserHandler struct {
	*Responder
	users  services.UserServiceProvider
	events services.EventServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(rs *Responder, users services.UserServiceProvider, events services.EventServiceProvider) *UserHandler {
	return &UserHandler{Responder: rs, users: users, events: events}
}

// RegisterForm renders the registration page.
func (h *UserHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "register", nil)
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	if email == "" || password == "" {
		h.Redirect(w, r, "/register", "Email and password are required.")
		return
	}
	if password != confirm {
		h.Redirect(w, r, "/register", "Passwords do not match!")
		return
	}

	user, err := h.users.CreateUser(r.Context(), email, password)
	if errors.Is(err, services.ErrEmailExists) {
		h.Redirect(w, r, "/register", "Email address already exists!")
		return
	}
	if err != nil {
		h.ServerError(w, r, err, "Failed to register user")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("User registered")
	h.recordEvent(r.Context(), services.EventUserRegistered, "Account created", &user.ID)
	h.Redirect(w, r, "/login", "Registration successful! Please login.")
}

// LoginForm renders the login page.
func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "login", nil)
}

// Login checks credentials and moves the session to the authenticated state.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	user, err := h.users.AuthenticateUser(r.Context(), email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Warn().Str("email", email).Msg("Failed authentication attempt")
		h.Redirect(w, r, "/login", "Please check your login details and try again.")
		return
	}
	if err != nil {
		h.ServerError(w, r, err, "Failed to authenticate user")
		return
	}

	auth.FromContext(r.Context()).Login(user.ID)
	h.recordEvent(r.Context(), services.EventUserLoggedIn, "Signed in", &user.ID)
	h.Redirect(w, r, "/dashboard")
}

// Logout drops the authenticated user from the session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.FromContext(r.Context()).Logout()
	h.Redirect(w, r, "/", "Logged out successfully!")
}

type dashboardData struct {
	User   models.User
	Events []models.Event
}

// Dashboard renders the logged-in user's page. It must sit behind RequireUser.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.Redirect(w, r, "/login", "Please login first.")
		return
	}

	events, err := h.events.GetRecentEventsForUser(r.Context(), user.ID, recentEventsLimit)
	if err != nil {
		h.ServerError(w, r, err, "Failed to load recent events")
		return
	}

	h.Render(w, r, http.StatusOK, "dashboard", dashboardData{User: user, Events: events})
}

// recordEvent writes to the activity log. The log is informational, so a
// failure is reported but does not fail the request.
func (h *UserHandler) recordEvent(ctx context.Context, eventType, message string, userID *int64) {
	if err := h.events.CreateEvent(ctx, eventType, message, userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
