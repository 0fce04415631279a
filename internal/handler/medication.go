package handler

import (
	"context"
	"net/http"

	"github.com/kidneymate/server/internal/ctxkeys"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/service"
)

type MedicationHandler struct {
	medicationService *service.MedicationService
	metrics           *metrics.Metrics
}

func NewMedicationHandler(medicationService *service.MedicationService, m *metrics.Metrics) *MedicationHandler {
	return &MedicationHandler{
		medicationService: medicationService,
		metrics:           m,
	}
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	meds, err := h.medicationService.Medications(user.ID)
	if err != nil {
		writeServiceError(w, err, "failed to load medications", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, meds)
}

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.MedicationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	med, err := h.medicationService.Add(user.ID, in)
	if err != nil {
		writeServiceError(w, err, "failed to add medication", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, med)
}

func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	err := h.medicationService.Delete(user.ID, id)
	if err != nil {
		writeServiceError(w, err, "failed to delete medication", "user_id", user.ID, "medication_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MedicationHandler) Live(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	serveStream(w, r, h.metrics, "medications", func(ctx context.Context) (*live.Stream[[]*model.Medication], error) {
		return h.medicationService.Stream(ctx, user.ID)
	}, nil)
}
