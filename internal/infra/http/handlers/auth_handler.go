package handlers

import (
	"net/http"

	"github.com/naass/lead-api/internal/usecase"
)

type AuthHandler struct {
	Auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginUser struct {
	Username string `json:"username"`
}

type LoginResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}

type authErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authErrorResponse{Success: false, Error: "Invalid JSON"})
		return
	}

	token, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		if usecase.DomainCode(err) == usecase.CodeUnauthorized {
			writeJSON(w, http.StatusUnauthorized, authErrorResponse{Success: false, Error: err.Error()})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    LoginUser{Username: req.Username},
	})
}
