package suppliers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// Handler wires the supplier endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers supplier routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("supplier:view"))
		r.Get("/supplier/page", h.list)
		r.Get("/supplier/{id}", h.get)
		r.Get("/supplier/{id}/qualifications", h.listSupplierQualifications)
		r.Get("/supplier/qualification/page", h.listQualifications)
		r.Get("/supplier/qualification/expiring", h.expiringQualifications)
		r.Get("/supplier/qualification/{id}", h.getQualification)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("supplier:create"))
		r.Post("/supplier", h.create)
		r.Post("/supplier/qualification", h.createQualification)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("supplier:update"))
		r.Put("/supplier/{id}", h.update)
		r.Put("/supplier/qualification/status/expired", h.expireOverdueQualifications)
		r.Put("/supplier/qualification/{id}", h.updateQualification)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("supplier:delete"))
		r.Delete("/supplier/{id}", h.remove)
		r.Delete("/supplier/qualification/batch", h.removeQualificationsBatch)
		r.Delete("/supplier/qualification/{id}", h.removeQualification)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{Name: q.Get("name")}
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
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, s)
}

type supplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Status  int    `json:"status"`
	Remark  string `json:"remark"`
}

func (req supplierRequest) toDomain(id int64) Supplier {
	return Supplier{
		ID:      id,
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  req.Status,
		Remark:  req.Remark,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
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
		httpx.Fail(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), req.toDomain(id)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "supplier updated")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "supplier deleted")
}
