package handlers

import (
	"net/http"

	"github.com/naass/lead-api/internal/infra/http/middleware"
	"github.com/naass/lead-api/internal/usecase"
)

type ContactHandler struct {
	UseCase *usecase.SubmitContactUseCase
}

func NewContactHandler(uc *usecase.SubmitContactUseCase) *ContactHandler {
	return &ContactHandler{UseCase: uc}
}

type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.ContactInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid JSON"})
		return
	}
	input.SessionID = sessionID(r)
	input.IPAddress = middleware.ClientIP(r)
	input.UserAgent = r.UserAgent()

	lead, err := h.UseCase.Execute(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordLeadCreated()
	writeJSON(w, http.StatusCreated, ContactResponse{
		Success: true,
		Message: "Thank you for contacting us! We will get back to you soon.",
		LeadID:  lead.ID,
	})
}
