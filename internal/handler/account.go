package handler

import (
	"net/http"

	"github.com/kidneymate/server/internal/ctxkeys"
	"github.com/kidneymate/server/internal/service"
)

type AccountHandler struct {
	authService    *service.AuthService
	userService    *service.UserService
	profileService *service.ProfileService
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService, profileService *service.ProfileService) *AccountHandler {
	return &AccountHandler{
		authService:    authService,
		userService:    userService,
		profileService: profileService,
	}
}

// Me returns the dashboard for the signed-in user.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	dashboard, err := h.userService.Dashboard(user.ID)
	if err != nil {
		writeServiceError(w, err, "failed to load account", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.UpdateName(user.ID, req.Name)
	if err != nil {
		writeServiceError(w, err, "failed to update profile", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "failed to delete account", "user_id", user.ID)
		return
	}

	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
