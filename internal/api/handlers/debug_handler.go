package handlers

import (
	"net/http"

	"github.com/isdelr/estate-listing/internal/models"
	"github.com/isdelr/estate-listing/internal/services"
)

// DebugHandler serves operator-only diagnostics.
type DebugHandler struct {
	*Responder
	users services.UserServiceProvider
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(rs *Responder, users services.UserServiceProvider) *DebugHandler {
	return &DebugHandler{Responder: rs, users: users}
}

// Users lists registered accounts. Password hashes are never included.
func (h *DebugHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.ServerError(w, r, err, "Failed to list users")
		return
	}
	h.Render(w, r, http.StatusOK, "debug_users", struct{ Users []models.User }{users})
}
