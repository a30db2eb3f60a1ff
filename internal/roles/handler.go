package roles

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

// Handler manages role management endpoints.
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

// MountRoutes registers role routes. Every operation requires manage_roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageRoles))
		r.Get("/", h.listRoles)
		r.Get("/{id}", h.getRole)
		r.Post("/", h.createRole)
		r.Put("/{id}", h.updateRole)
		r.Delete("/{id}", h.deleteRole)
	})
}

type roleRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Description   string  `json:"description" validate:"max=500"`
	PermissionIDs []int64 `json:"permission_ids"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	shared.RespondJSON(w, http.StatusOK, map[string][]Role{"roles": roles})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get role", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, role)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	role, err := h.service.CreateRole(r.Context(), RoleInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		h.respondServiceError(w, "create role", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	role, err := h.service.UpdateRole(r.Context(), id, RoleInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		h.respondServiceError(w, "update role", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		h.respondServiceError(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondJSON(w, http.StatusBadRequest, shared.ErrorResponse{Error: "invalid role id"})
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
	case errors.Is(err, shared.ErrSystemRoleProtected):
		shared.RespondError(w, http.StatusForbidden, err)
	case errors.Is(err, ErrNameTaken):
		shared.RespondJSON(w, http.StatusConflict, shared.ErrorResponse{Error: "Role name already in use"})
	default:
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
	}
}
