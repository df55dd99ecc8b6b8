package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keebmart/keebmart/internal/handler/dto"
	"github.com/keebmart/keebmart/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !readJSON(w, r, &req) {
		return
	}

	input := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	if err := h.svc.Register(r.Context(), input); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "email", req.Email)

	writeJSON(w, http.StatusCreated, dto.MessageResponse{
		Message: "User registered successfully",
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !readJSON(w, r, &req) {
		return
	}

	input := service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	token, err := h.svc.Login(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "email", req.Email)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Message: "Login successful",
		Token:   token,
	})
}

// handleServiceError maps auth service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	handleAuthError(w, h.logger, err)
}

// handleAuthError maps auth service errors to HTTP responses.
// The original backend reports duplicate registration as 400, not 409;
// that mapping is preserved.
func handleAuthError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "All fields are required")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusBadRequest, "USER_EXISTS", "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
