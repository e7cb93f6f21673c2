package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/naass/lead-api/internal/entity"
	"github.com/naass/lead-api/internal/usecase"
)

// LeadHandler serves the admin dashboard's lead endpoints.
type LeadHandler struct {
	Service *usecase.LeadService
}

func NewLeadHandler(service *usecase.LeadService) *LeadHandler {
	return &LeadHandler{Service: service}
}

type ListLeadsResponse struct {
	Success     bool           `json:"success"`
	Data        []*entity.Lead `json:"data"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Total       int64          `json:"total"`
}

type LeadStatsResponse struct {
	Success bool              `json:"success"`
	Data    *entity.LeadStats `json:"data"`
}

type LeadResponse struct {
	Success bool         `json:"success"`
	Data    *entity.Lead `json:"data"`
}

type UpdateLeadRequest struct {
	Status string `json:"status"`
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.Service.List(r.Context(), q.Get("status"), limit, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	leads := result.Leads
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Success:     true,
		Data:        leads,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Total:       result.Total,
	})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeadStatsResponse{Success: true, Data: stats})
}

// UpdateStatus serves both PUT and PATCH.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid JSON"})
		return
	}

	lead, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LeadResponse{Success: true, Data: lead})
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Lead deleted successfully"})
}

func (h *LeadHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		req.IDs = nil
	}

	n, err := h.Service.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkDeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("Deleted %d leads", n),
		DeletedCount: n,
	})
}
