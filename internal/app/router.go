package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warden-admin/warden/internal/auth"
	"github.com/warden-admin/warden/internal/observability"
	"github.com/warden-admin/warden/internal/rbac"
	"github.com/warden-admin/warden/internal/roles"
	"github.com/warden-admin/warden/internal/shared"
	"github.com/warden-admin/warden/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Warden defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Session probe for clients: 200 with the snapshot when authenticated,
	// 401 otherwise.
	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			shared.RespondJSON(w, http.StatusUnauthorized, shared.ErrorResponse{Error: "authentication required"})
			return
		}
		shared.RespondJSON(w, http.StatusOK, map[string]any{
			"user_id":   sess.UserID,
			"name":      sess.Name,
			"email":     sess.Email,
			"role_id":   sess.RoleID,
			"role_name": sess.RoleName,
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/profile", params.UsersHandler.MountProfileRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	r.Route("/permissions", params.PermissionsHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
