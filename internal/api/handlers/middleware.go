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

type contextKey string

const userKey = contextKey("user")

// UserFromContext returns the user resolved by RequireUser.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// RequireUser only lets authenticated sessions through and resolves their
// user. Anonymous visitors, and sessions whose user no longer exists, are
// sent to the login page.
func (rs *Responder) RequireUser(users services.UserServiceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.FromContext(r.Context())
			if !sess.Authenticated() {
				rs.Redirect(w, r, "/login", "Please login first.")
				return
			}

			user, err := users.GetUserByID(r.Context(), sess.UserID)
			if errors.Is(err, services.ErrUserNotFound) {
				log.Warn().Int64("user_id", sess.UserID).Msg("Session refers to a missing user, clearing it")
				sess.Logout()
				rs.Redirect(w, r, "/login", "Please login first.")
				return
			}
			if err != nil {
				rs.ServerError(w, r, err, "Failed to resolve session user")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator must run after RequireUser. It admits only users whose
// email is in operators.
func (rs *Responder) RequireOperator(operators []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !isOperator(user.Email, operators) {
				log.Warn().Str("email", user.Email).Str("path", r.URL.Path).Msg("Rejected non-operator from diagnostic route")
				rs.Error(w, r, http.StatusForbidden, "Not available.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isOperator(email string, operators []string) bool {
	for _, op := range operators {
		if strings.EqualFold(op, email) {
			return true
		}
	}
	return false
}
