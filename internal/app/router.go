package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haocai-admin/haocai-admin/internal/auth"
	"github.com/haocai-admin/haocai-admin/internal/departments"
	"github.com/haocai-admin/haocai-admin/internal/inventory"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/categories"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/materials"
	"github.com/haocai-admin/haocai-admin/internal/masterdata/suppliers"
	"github.com/haocai-admin/haocai-admin/internal/observability"
	"github.com/haocai-admin/haocai-admin/internal/permissions"
	"github.com/haocai-admin/haocai-admin/internal/roles"
	"github.com/haocai-admin/haocai-admin/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Tokens *auth.TokenManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	DepartmentsHandler *departments.Handler
	CategoriesHandler  *categories.Handler
	MaterialsHandler   *materials.Handler
	SuppliersHandler   *suppliers.Handler
	InventoryHandler   *inventory.Handler

	Metrics *observability.Metrics
}

// requestMiddleware is the per-request chain installed ahead of
// routing: request IDs for log correlation, client IP resolution,
// panic recovery, and the deadline every handler runs under.
func requestMiddleware(cfg *Config) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
	}
	if !cfg.IsProduction() {
		chain = append(chain, chimw.Logger)
	}
	if cfg != nil && cfg.RequestTimeout > 0 {
		chain = append(chain, chimw.Timeout(cfg.RequestTimeout))
	}
	return chain
}

// NewRouter constructs the chi.Router for the admin API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	for _, mw := range requestMiddleware(params.Config) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		// Login carries its own rate limit keyed by client IP.
		api.Group(func(public chi.Router) {
			limit := 10
			if params.Config != nil && params.Config.LoginRateLimit > 0 {
				limit = params.Config.LoginRateLimit
			}
			public.Use(httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountRoutes(public)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(params.Tokens.Middleware)

			params.AuthHandler.MountProtectedRoutes(protected)
			params.UsersHandler.MountRoutes(protected)
			params.RolesHandler.MountRoutes(protected)
			params.PermissionsHandler.MountRoutes(protected)
			params.DepartmentsHandler.MountRoutes(protected)
			params.CategoriesHandler.MountRoutes(protected)
			params.MaterialsHandler.MountRoutes(protected)
			params.SuppliersHandler.MountRoutes(protected)
			params.InventoryHandler.MountRoutes(protected)
		})
	})

	return r
}
