package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kidneymate/server/internal/ctxkeys"
	"github.com/kidneymate/server/internal/service"
)

const maxReportUpload = 6 << 20

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	reports, err := h.reportService.Reports(user.ID)
	if err != nil {
		writeServiceError(w, err, "failed to load reports", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

// Upload accepts a multipart form with the captured image in "file".
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxReportUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "report image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "report image is required")
		return
	}
	defer file.Close()

	report, err := h.reportService.Upload(r.Context(), user.ID, file, header)
	if err != nil {
		writeServiceError(w, err, "failed to upload report", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// File streams the stored image to its owner.
func (h *ReportHandler) File(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	report, body, err := h.reportService.Open(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err, "failed to open report", "user_id", user.ID, "report_id", id)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", report.MimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+report.Filename+`"`)
	if report.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(report.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")

	_, err = io.Copy(w, body)
	if err != nil {
		slog.Warn("failed to stream report", "error", err, "report_id", id)
	}
}

func (h *ReportHandler) Share(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	link, err := h.reportService.Share(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err, "failed to share report", "user_id", user.ID, "report_id", id)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	err := h.reportService.Delete(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err, "failed to delete report", "user_id", user.ID, "report_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
