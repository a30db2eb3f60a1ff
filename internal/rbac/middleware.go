package rbac

import (
	"log/slog"
	"net/http"

	"github.com/warden-admin/warden/internal/shared"
)

// Middleware wires authorization checks into HTTP routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireSession rejects requests without a valid session token.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.SessionFromContext(r.Context()) == nil {
			shared.RespondJSON(w, http.StatusUnauthorized, shared.ErrorResponse{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user holds at least one of the required
// permissions. Unauthenticated requests get 401; authenticated requests
// lacking every permission get 403.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := shared.UserIDFromContext(r.Context())
			if userID == nil {
				shared.RespondJSON(w, http.StatusUnauthorized, shared.ErrorResponse{Error: "authentication required"})
				return
			}
			granted, err := m.Service.HasAnyPermission(r.Context(), userID, perms...)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require any", slog.Any("error", err))
				}
				shared.RespondJSON(w, http.StatusInternalServerError, shared.ErrorResponse{Error: shared.UserSafeMessage(err)})
				return
			}
			if !granted {
				shared.RespondError(w, http.StatusForbidden, shared.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
