package handler

import (
	"context"
	"net/http"

	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/service"
)

type TechnicianHandler struct {
	rosterService *service.RosterService
	metrics       *metrics.Metrics
}

func NewTechnicianHandler(rosterService *service.RosterService, m *metrics.Metrics) *TechnicianHandler {
	return &TechnicianHandler{
		rosterService: rosterService,
		metrics:       m,
	}
}

func (h *TechnicianHandler) List(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.rosterService.Technicians()
	if err != nil {
		writeServiceError(w, err, "failed to load technicians")
		return
	}

	writeJSON(w, http.StatusOK, technicians)
}

func (h *TechnicianHandler) Live(w http.ResponseWriter, r *http.Request) {
	serveStream(w, r, h.metrics, "technicians", func(ctx context.Context) (*live.Stream[[]*model.Technician], error) {
		return h.rosterService.Stream(ctx)
	}, nil)
}
