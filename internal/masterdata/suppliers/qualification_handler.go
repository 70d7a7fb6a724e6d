package suppliers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
)

type qualificationRequest struct {
	SupplierID  int64  `json:"supplierId"`
	Type        string `json:"qualificationType"`
	Name        string `json:"qualificationName"`
	FileURL     string `json:"fileUrl"`
	FileName    string `json:"fileName"`
	IssueDate   string `json:"issueDate"`
	ExpiryDate  string `json:"expiryDate"`
	Authority   string `json:"issuingAuthority"`
	Status      int    `json:"status"`
	Description string `json:"description"`
}

func (req qualificationRequest) toDomain(id int64) (Qualification, error) {
	q := Qualification{
		ID:          id,
		SupplierID:  req.SupplierID,
		Type:        req.Type,
		Name:        req.Name,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		Authority:   req.Authority,
		Status:      req.Status,
		Description: req.Description,
	}
	var err error
	if req.IssueDate != "" {
		if q.IssueDate, err = time.ParseInLocation(time.DateOnly, req.IssueDate, time.UTC); err != nil {
			return Qualification{}, httpx.Validationf("invalid issue date %q", req.IssueDate)
		}
	}
	if req.ExpiryDate != "" {
		if q.ExpiryDate, err = time.ParseInLocation(time.DateOnly, req.ExpiryDate, time.UTC); err != nil {
			return Qualification{}, httpx.Validationf("invalid expiry date %q", req.ExpiryDate)
		}
	}
	return q, nil
}

func (h *Handler) listQualifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := QualificationFilters{Type: q.Get("qualificationType")}
	if raw := q.Get("supplierId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid supplier filter")
			return
		}
		filters.SupplierID = id
	}
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

	page, err := h.service.ListQualifications(r.Context(), filters)
	if err != nil {
		h.logger.Error("list qualifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, page)
}

func (h *Handler) getQualification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid qualification id")
		return
	}
	q, err := h.service.GetQualification(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, q)
}

func (h *Handler) listSupplierQualifications(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	quals, err := h.service.QualificationsForSupplier(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, quals)
}

func (h *Handler) expiringQualifications(w http.ResponseWriter, r *http.Request) {
	quals, err := h.service.ExpiringQualifications(r.Context())
	if err != nil {
		h.logger.Error("list expiring qualifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, quals)
}

func (h *Handler) createQualification(w http.ResponseWriter, r *http.Request) {
	var req qualificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := req.toDomain(0)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateQualification(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) updateQualification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid qualification id")
		return
	}
	var req qualificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := req.toDomain(id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateQualification(r.Context(), q); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "qualification updated")
}

func (h *Handler) removeQualification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid qualification id")
		return
	}
	if err := h.service.DeleteQualification(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, "qualification deleted")
}

type qualificationBatchRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *Handler) removeQualificationsBatch(w http.ResponseWriter, r *http.Request) {
	var req qualificationBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	count, err := h.service.DeleteQualificationsBatch(r.Context(), req.IDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, count)
}

func (h *Handler) expireOverdueQualifications(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ExpireOverdueQualifications(r.Context())
	if err != nil {
		h.logger.Error("expire overdue qualifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, count)
}
