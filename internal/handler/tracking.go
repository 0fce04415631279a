package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kidneymate/server/internal/ctxkeys"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/service"
)

type TrackingHandler struct {
	trackingService *service.TrackingService
	metrics         *metrics.Metrics
}

func NewTrackingHandler(trackingService *service.TrackingService, m *metrics.Metrics) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		metrics:         m,
	}
}

// historyEntry is a list row: the full record plus the list presentation.
type historyEntry struct {
	*model.TrackingRecord
	Summary     string `json:"summary"`
	DisplayDate string `json:"displayDate"`
}

type historyResponse struct {
	Records  []historyEntry `json:"records"`
	Selected *historyEntry  `json:"selected"`
}

func newHistoryEntry(r *model.TrackingRecord) historyEntry {
	return historyEntry{
		TrackingRecord: r,
		Summary:        r.Summary(),
		DisplayDate:    r.DisplayDate(),
	}
}

func historyEntries(records []*model.TrackingRecord) []historyEntry {
	entries := make([]historyEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, newHistoryEntry(r))
	}
	return entries
}

func (h *TrackingHandler) date(r *http.Request) string {
	if date := r.PathValue("date"); date != "" {
		return date
	}
	if date := r.URL.Query().Get("date"); date != "" {
		return date
	}
	return h.trackingService.Today()
}

// Today returns the entry for ?date= (default today), empty if unsaved.
func (h *TrackingHandler) Today(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	date := h.date(r)

	record, err := h.trackingService.LoadToday(user.ID, date)
	if err != nil {
		writeServiceError(w, err, "failed to load tracking entry", "user_id", user.ID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// SaveToday merges the submitted fields into the day's entry.
func (h *TrackingHandler) SaveToday(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	date := h.date(r)

	var in model.TrackingInput
	if !decodeJSON(w, r, &in) {
		return
	}

	record, err := h.trackingService.SaveToday(user.ID, date, in)
	if err != nil {
		writeServiceError(w, err, "failed to save tracking entry", "user_id", user.ID, "date", date)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// History lists recent entries. ?selected=<date> opens one in the detail view.
func (h *TrackingHandler) History(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	records, err := h.trackingService.History(user.ID, historyLimit(r))
	if err != nil {
		writeServiceError(w, err, "failed to load history", "user_id", user.ID)
		return
	}

	view := service.HistoryView{Records: records}
	if selected := r.URL.Query().Get("selected"); selected != "" {
		view = view.SelectDate(selected)
	}

	resp := historyResponse{Records: historyEntries(view.Records)}
	if view.Selected != nil {
		entry := newHistoryEntry(view.Selected)
		resp.Selected = &entry
	}

	writeJSON(w, http.StatusOK, resp)
}

// HistoryLive pushes the history list over a WebSocket after every change.
func (h *TrackingHandler) HistoryLive(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	limit := historyLimit(r)

	open := func(ctx context.Context) (*live.Stream[[]*model.TrackingRecord], error) {
		return h.trackingService.StreamHistory(ctx, user.ID, limit)
	}
	serveStream(w, r, h.metrics, "tracking", open, func(records []*model.TrackingRecord) any {
		return historyEntries(records)
	})
}

func historyLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}
	return service.ClampHistoryLimit(limit)
}
