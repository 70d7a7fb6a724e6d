package rbac

import (
	"log/slog"
	"net/http"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Middleware wires permission checks for HTTP handlers. Requests without an
// authenticated principal receive 401; authenticated requests missing the
// required permission receive 403 with the session untouched.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require ensures the current user holds the given permission code.
func (m Middleware) Require(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			granted, err := m.Service.EffectivePermissions(r.Context(), principal.UserID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resolve effective permissions", slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !Granted(granted, code) {
				httpx.Fail(w, http.StatusForbidden, "no permission: "+code)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
