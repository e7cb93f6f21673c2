package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/usecase"
)

// maxBodyBytes mirrors the 10mb JSON limit of the public site.
const maxBodyBytes = 10 << 20

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps use case errors onto HTTP statuses. Technical errors are
// logged with their cause and answered with their public message only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeUnauthorized:
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, Response{Success: false, Message: de.Message})
		return
	}

	msg := "An error occurred. Please try again later."
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		msg = te.Message
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Response{Success: false, Message: "Route not found"})
}
