package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/service"
	"github.com/kidneymate/server/internal/storage"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrProfileNotFound,
	repository.ErrMedicationNotFound,
	repository.ErrReportNotFound,
	service.ErrSchemeNotFound,
	storage.ErrObjectNotFound,
}

// writeServiceError maps a service error to a status. Validation messages go
// to the client as-is; anything unexpected is logged with msg and the given
// attributes and reported as msg.
func writeServiceError(w http.ResponseWriter, err error, msg string, args ...any) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		return
	case errors.Is(err, service.ErrInvalidPhoneCode):
		writeError(w, http.StatusUnauthorized, service.ErrInvalidPhoneCode.Error())
		return
	case errors.Is(err, service.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, service.ErrTooManyAttempts.Error())
		return
	case errors.Is(err, service.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, service.ErrEmailAlreadyExists.Error())
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusNotFound, target.Error())
			return
		}
	}

	slog.Error(msg, append([]any{"error", err}, args...)...)
	writeError(w, http.StatusInternalServerError, msg)
}
