package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/naass/lead-api/internal/entity"
	"github.com/naass/lead-api/internal/infra/http/middleware"
	"github.com/naass/lead-api/internal/usecase"
)

type DraftHandler struct {
	Service *usecase.DraftService
}

func NewDraftHandler(service *usecase.DraftService) *DraftHandler {
	return &DraftHandler{Service: service}
}

type SaveDraftRequest struct {
	Key  string          `json:"key"`
	Data entity.FormData `json:"data"`
}

type SaveDraftResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DraftID  string `json:"draftId"`
	Progress int    `json:"progress"`
}

type DraftView struct {
	ID        string          `json:"id"`
	Data      entity.FormData `json:"data"`
	Progress  int             `json:"progress"`
	UpdatedAt time.Time       `json:"updatedAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

type GetDraftResponse struct {
	Success bool       `json:"success"`
	Draft   *DraftView `json:"draft"`
}

type DeleteDraftResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

type ListDraftsResponse struct {
	Success bool            `json:"success"`
	Drafts  []*entity.Draft `json:"drafts"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveDraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid draft payload"})
		return
	}

	draft, err := h.Service.SaveDraft(r.Context(), usecase.SaveDraftInput{
		Key:       req.Key,
		FormType:  chi.URLParam(r, "formType"),
		Data:      req.Data,
		SessionID: sessionID(r),
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordDraftSaved(string(draft.FormType))
	writeJSON(w, http.StatusOK, SaveDraftResponse{
		Success:  true,
		Message:  "Draft saved successfully",
		DraftID:  draft.ID,
		Progress: draft.Progress,
	})
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Service.GetDraft(r.Context(), r.URL.Query().Get("key"), chi.URLParam(r, "formType"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := GetDraftResponse{Success: true}
	if draft != nil {
		resp.Draft = &DraftView{
			ID:        draft.ID,
			Data:      draft.Data,
			Progress:  draft.Progress,
			UpdatedAt: draft.UpdatedAt,
			CreatedAt: draft.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Service.DeleteDraft(r.Context(), r.URL.Query().Get("key"), chi.URLParam(r, "formType"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "No draft found"
	if deleted {
		msg = "Draft deleted successfully"
	}
	writeJSON(w, http.StatusOK, DeleteDraftResponse{Success: true, Message: msg, Deleted: deleted})
}

func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	drafts, err := h.Service.ListDrafts(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListDraftsResponse{Success: true, Drafts: drafts})
}

func (h *DraftHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// ids that is not an array of strings counts as missing
		req.IDs = nil
	}

	n, err := h.Service.BulkDeleteDrafts(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkDeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("Deleted %d drafts", n),
		DeletedCount: n,
	})
}

// sessionID prefers the session cookie, then the X-Session-ID header.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie("sessionId"); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("X-Session-ID"); h != "" {
		return h
	}
	return fmt.Sprintf("anonymous_%d", time.Now().UnixMilli())
}
