package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warden-admin/warden/internal/rbac"
	"github.com/warden-admin/warden/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers user management routes. The coarse manage_users
// permission always suffices; mutations alternatively accept their
// fine-grained permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageUsers))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageUsers, shared.PermCreateUsers))
		r.Post("/", h.createUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageUsers, shared.PermEditUsers))
		r.Put("/{id}", h.updateUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageUsers, shared.PermDeleteUsers))
		r.Delete("/{id}", h.deleteUser)
	})
}

// MountProfileRoutes registers the self-service profile routes; they need a
// session but no management permission.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Use(h.rbac.RequireSession)
	r.Get("/", h.getProfile)
	r.Put("/", h.updateProfile)
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   int64  `json:"role_id" validate:"required"`
	IsActive bool   `json:"is_active"`
}

type updateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	RoleID   int64   `json:"role_id" validate:"required"`
	IsActive bool    `json:"is_active"`
}

type updateProfileRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"current_password" validate:"required_with=NewPassword"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=8"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	shared.RespondJSON(w, http.StatusOK, map[string][]User{"users": users})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, err := h.service.CreateUser(r.Context(), CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.respondServiceError(w, "create user", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, err := h.service.UpdateUser(r.Context(), id, UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.respondServiceError(w, "update user", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err := h.service.DeleteUser(r.Context(), sess.UserID, id); err != nil {
		h.respondServiceError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	user, err := h.service.GetUser(r.Context(), sess.UserID)
	if err != nil {
		h.respondServiceError(w, "get profile", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	user, err := h.service.UpdateProfile(r.Context(), sess.UserID, UpdateProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.respondServiceError(w, "update profile", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "request failed validation"})
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, err)
	case errors.Is(err, shared.ErrEmailInUse):
		shared.RespondError(w, http.StatusConflict, err)
	case errors.Is(err, shared.ErrCannotDeleteSelf):
		shared.RespondError(w, http.StatusForbidden, err)
	case errors.Is(err, shared.ErrInvalidCredentials):
		shared.RespondError(w, http.StatusUnprocessableEntity, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
	}
}
