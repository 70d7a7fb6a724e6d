package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the routes that do not require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/users/login", h.handleLogin)
}

// MountProtectedRoutes registers the routes behind the bearer middleware.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/users/logout", h.handleLogout)
	r.Get("/users/current", h.handleCurrent)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if principal, ok := shared.PrincipalFromContext(r.Context()); ok {
		h.service.Logout(r.Context(), principal.TokenID)
	}
	httpx.OKMessage(w, "logged out")
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.service.CurrentUser(r.Context(), principal.UserID, principal.TokenID)
	if err != nil {
		h.logger.Error("current user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, user)
}
