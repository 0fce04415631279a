package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to create account")
		return
	}

	h.startSession(w, http.StatusCreated, user)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to sign in")
		return
	}

	h.startSession(w, http.StatusOK, user)
}

func (h *authHandler) SendPhoneCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.SendPhoneCode(r.Context(), req.Phone)
	if err != nil {
		writeServiceError(w, err, "failed to send code")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "code sent"})
}

func (h *authHandler) VerifyPhoneCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.VerifyPhoneCode(req.Phone, req.Code)
	if err != nil {
		writeServiceError(w, err, "failed to verify code")
		return
	}

	h.startSession(w, http.StatusOK, user)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// startSession issues a token for both cookie (web) and bearer (mobile) use.
func (h *authHandler) startSession(w http.ResponseWriter, status int, user *model.User) {
	token, expiresAt, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	h.authService.SetJWTCookie(w, token, expiresAt)
	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}
