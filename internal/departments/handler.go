package departments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// Handler wires the department endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers department routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("department:view"))
		r.Get("/department/tree", h.tree)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("department:create"))
		r.Post("/department", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("department:update"))
		r.Put("/department/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("department:delete"))
		r.Delete("/department/{id}", h.remove)
	})
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context())
	if err != nil {
		h.logger.Error("load department tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, tree)
}

type departmentRequest struct {
	Name      string `json:"name"`
	ParentID  int64  `json:"parentId"`
	Leader    string `json:"leader"`
	Phone     string `json:"phone"`
	SortOrder int    `json:"sortOrder"`
	Status    int    `json:"status"`
}

func (req departmentRequest) toDomain(id int64) Department {
	return Department{
		ID:        id,
		Name:      req.Name,
		ParentID:  req.ParentID,
		Leader:    req.Leader,
		Phone:     req.Phone,
		SortOrder: req.SortOrder,
		Status:    req.Status,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.service.Create(r.Context(), req.toDomain(0))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid department id")
		return
	}
	var req departmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), req.toDomain(id)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "department updated")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid department id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "department deleted")
}
