package auth

import (
	"net/http"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Middleware extracts and verifies the bearer token, placing the principal
// in the request context. Missing, forged, revoked or expired tokens all
// produce the same 401 envelope so the console's interceptor sees a single
// class of signal.
func (tm *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Fail(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := tm.Verify(r.Context(), token)
		if err != nil {
			httpx.Fail(w, http.StatusUnauthorized, "token invalid or expired")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), shared.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			TokenID:  claims.ID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
