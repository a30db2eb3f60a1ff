package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warden-admin/warden/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "email and password are required"})
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			shared.RespondError(w, http.StatusUnauthorized, err)
		case errors.Is(err, shared.ErrAccountInactive):
			shared.RespondError(w, http.StatusUnprocessableEntity, err)
		default:
			h.logger.Error("login", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.sessions.Write(w, token)
	sess := h.sessions.Parse(token)
	shared.RespondJSON(w, http.StatusOK, sessionResponse{
		UserID:   sess.UserID,
		Name:     sess.Name,
		Email:    sess.Email,
		RoleID:   sess.RoleID,
		RoleName: sess.RoleName,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "name, a valid email and a password of at least 8 characters are required"})
		return
	}

	if err := h.service.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, shared.ErrEmailInUse) {
			shared.RespondError(w, http.StatusConflict, err)
			return
		}
		h.logger.Error("register", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	// Registration does not auto-create a session; the client logs in next.
	shared.RespondJSON(w, http.StatusCreated, map[string]bool{"registered": true})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
