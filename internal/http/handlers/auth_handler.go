package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/pkg/logger"
)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authRes struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !strings.Contains(in.Email, "@") || len(in.Password) < 8 || strings.TrimSpace(in.FullName) == "" {
		response.BadRequest(w, "email, full_name and a password of at least 8 characters are required")
		return
	}
	if in.Role != "" && in.Role != "client" && in.Role != "consultant" {
		response.BadRequest(w, "role must be client or consultant")
		return
	}

	user, token, err := h.authService.Register(r.Context(), in.Email, in.Password, in.FullName, in.Role)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			response.WriteError(w, http.StatusConflict, "Email already registered", response.CodeEmailExists)
			return
		}
		logger.ErrorContext(r.Context(), "Registration failed", "error", err)
		response.InternalError(w, "Failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, authRes{Token: token, User: user})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		logger.ErrorContext(r.Context(), "Login failed", "error", err)
		response.InternalError(w, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authRes{Token: token, User: user})
}
