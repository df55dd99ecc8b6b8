package handler

import (
	"log/slog"
	"net/http"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/handler/dto"
	"github.com/keebmart/keebmart/internal/service"
)

// UserHandler serves token-guarded user reads.
type UserHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Me handles GET /users. It returns the caller's own profile, looked up
// by the email in the verified identity. The account may be gone even
// though the token is still valid.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	user, err := h.svc.Profile(r.Context(), identity.Email)
	if err != nil {
		handleAuthError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// ListAll handles GET /admin/users. Any valid token may call this; the
// route carries no role check, matching the behavior of the original
// backend. TODO: require an explicit role claim before exposing this
// beyond trusted clients.
func (h *UserHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		handleAuthError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}
