package handler

import (
	"net/http"

	"github.com/kidneymate/server/internal/service"
)

type SchemeHandler struct {
	schemeService *service.SchemeService
}

func NewSchemeHandler(schemeService *service.SchemeService) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

func (h *SchemeHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.schemeService.Schemes())
}

func (h *SchemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	scheme, err := h.schemeService.Scheme(r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err, "failed to load scheme")
		return
	}

	writeJSON(w, http.StatusOK, scheme)
}
