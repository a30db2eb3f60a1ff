package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warden-admin/warden/internal/shared"
)

// PermissionsHandler serves the permission catalog and the caller's own
// effective set.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireSession)
		r.Get("/me", h.myPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageRoles))
		r.Get("/", h.listPermissions)
	})
}

// myPermissions returns the caller's own effective permission names so the
// UI can decide what to show. Only a valid session is required.
func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	perms, err := h.service.EffectivePermissions(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("resolve own permissions", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if perms == nil {
		perms = []string{}
	}
	shared.RespondJSON(w, http.StatusOK, map[string][]string{"permissions": perms})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string][]Permission{"permissions": perms})
}
