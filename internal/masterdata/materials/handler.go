package materials

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// Handler wires the material catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers material routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("material:view"))
		r.Get("/material/page", h.list)
		r.Get("/material/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("material:create"))
		r.Post("/material", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("material:update"))
		r.Put("/material/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("material:delete"))
		r.Delete("/material/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Name: q.Get("name"),
		Code: q.Get("code"),
	}
	filters.CategoryID, _ = strconv.ParseInt(q.Get("categoryId"), 10, 64)
	if raw := q.Get("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filters.Status = &status
	}
	filters.Current, _ = strconv.Atoi(q.Get("current"))
	filters.Size, _ = strconv.Atoi(q.Get("size"))

	page, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list materials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id")
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, m)
}

type materialRequest struct {
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	CategoryID int64   `json:"categoryId"`
	Spec       string  `json:"spec"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	SupplierID int64   `json:"supplierId"`
	Status     int     `json:"status"`
	Remark     string  `json:"remark"`
}

func (req materialRequest) toDomain(id int64) Material {
	return Material{
		ID:         id,
		Name:       req.Name,
		Code:       req.Code,
		CategoryID: req.CategoryID,
		Spec:       req.Spec,
		Unit:       req.Unit,
		Price:      req.Price,
		SupplierID: req.SupplierID,
		Status:     req.Status,
		Remark:     req.Remark,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
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
		httpx.Fail(w, http.StatusBadRequest, "invalid material id")
		return
	}
	var req materialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), req.toDomain(id)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "material updated")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "material deleted")
}
