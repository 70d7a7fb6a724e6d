package inventory

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Handler wires the inventory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("inventory:view"))
		r.Get("/inventory/page", h.list)
		r.Get("/inventory/material/{materialId}", h.get)
		r.Get("/inventory/record/page", h.records)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("inventory:in"))
		r.Post("/inventory/in", h.stockIn)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("inventory:out"))
		r.Post("/inventory/out", h.stockOut)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("inventory:update"))
		r.Put("/inventory/material/{materialId}/threshold", h.setThreshold)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		MaterialName: q.Get("materialName"),
		OnlyLow:      q.Get("onlyLow") == "true",
	}
	filters.Current, _ = strconv.Atoi(q.Get("current"))
	filters.Size, _ = strconv.Atoi(q.Get("size"))

	page, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.ParseInt(chi.URLParam(r, "materialId"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id")
		return
	}
	stock, err := h.service.GetByMaterial(r.Context(), materialID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, stock)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters RecordFilters
	filters.MaterialID, _ = strconv.ParseInt(q.Get("materialId"), 10, 64)
	filters.Movement = q.Get("movement")
	filters.Current, _ = strconv.Atoi(q.Get("current"))
	filters.Size, _ = strconv.Atoi(q.Get("size"))

	page, err := h.service.Records(r.Context(), filters)
	if err != nil {
		h.logger.Error("list stock records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, page)
}

type movementRequest struct {
	MaterialID int64  `json:"materialId"`
	Quantity   int64  `json:"quantity"`
	Remark     string `json:"remark"`
}

func (h *Handler) stockIn(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.StockIn)
}

func (h *Handler) stockOut(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.StockOut)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, rec Record) (Stock, error)) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec := Record{MaterialID: req.MaterialID, Quantity: req.Quantity, Remark: req.Remark}
	if principal, ok := shared.PrincipalFromContext(r.Context()); ok {
		rec.OperatorID = principal.UserID
	}
	stock, err := op(r.Context(), rec)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, stock)
}

func (h *Handler) setThreshold(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.ParseInt(chi.URLParam(r, "materialId"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id")
		return
	}
	var req struct {
		Threshold int64 `json:"threshold"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.SetThreshold(r.Context(), materialID, req.Threshold); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "threshold updated")
}
