package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/validation"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
)

// TrackingTopic is the live topic signalled when a user's records change.
func TrackingTopic(userID string) string {
	return "tracking:" + userID
}

type TrackingService struct {
	repo    repository.TrackingRepository
	hub     *live.Hub
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTrackingService(repo repository.TrackingRepository, hub *live.Hub, m *metrics.Metrics) *TrackingService {
	return &TrackingService{
		repo:    repo,
		hub:     hub,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Today is the current date key in UTC.
func (s *TrackingService) Today() string {
	return s.now().Format(model.DateLayout)
}

// LoadToday returns the record for date, or an empty record carrying only the
// date when the user has not saved that day yet.
func (s *TrackingService) LoadToday(userID, date string) (*model.TrackingRecord, error) {
	err := validateDate(date)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.ByDate(userID, date)
	if errors.Is(err, repository.ErrTrackingRecordNotFound) {
		return &model.TrackingRecord{Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking record: %w", err)
	}

	return record, nil
}

// SaveToday merges the non-nil fields of in into the record for date.
// Both weights are required on every save; the weight gain is recomputed
// from them. A rejected input writes nothing.
func (s *TrackingService) SaveToday(userID, date string, in model.TrackingInput) (*model.TrackingRecord, error) {
	err := validateDate(date)
	if err != nil {
		s.countSave("invalid")
		return nil, err
	}

	in = trimNumbers(in)
	weightGain, err := validateTrackingInput(in)
	if err != nil {
		s.countSave("invalid")
		return nil, err
	}

	now := s.now()
	record, err := s.repo.Merge(userID, date, func(r *model.TrackingRecord) {
		r.Merge(in, weightGain, now)
	})
	if err != nil {
		s.countSave("error")
		return nil, fmt.Errorf("failed to save tracking record: %w", err)
	}

	s.countSave("ok")
	s.hub.Publish(TrackingTopic(userID))
	slog.Debug("tracking record saved", "user_id", userID, "date", date, "weight_gain", weightGain)

	return record, nil
}

// History returns the user's most recently updated records, newest first.
func (s *TrackingService) History(userID string, limit int) ([]*model.TrackingRecord, error) {
	records, err := s.repo.Recent(userID, ClampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking history: %w", err)
	}
	return records, nil
}

// StreamHistory is History as a live query: a fresh snapshot follows every
// save by the user until ctx ends or the stream is closed.
func (s *TrackingService) StreamHistory(ctx context.Context, userID string, limit int) (*live.Stream[[]*model.TrackingRecord], error) {
	limit = ClampHistoryLimit(limit)

	return live.Watch(ctx, s.hub, TrackingTopic(userID), func() ([]*model.TrackingRecord, error) {
		return s.History(userID, limit)
	})
}

// ClampHistoryLimit maps non-positive limits to the default and caps the rest.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

func (s *TrackingService) countSave(result string) {
	if s.metrics != nil {
		s.metrics.TrackingSaves.WithLabelValues(result).Inc()
	}
}

func validateDate(date string) error {
	_, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return invalid(ErrTrackingValidation, "date must be formatted as YYYY-MM-DD")
	}
	return nil
}

// trimNumbers strips surrounding whitespace from the numeric fields so the
// stored values match the ones the weight gain is computed from.
func trimNumbers(in model.TrackingInput) model.TrackingInput {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}

	in.DryWeight = trim(in.DryWeight)
	in.CurrentWeight = trim(in.CurrentWeight)
	in.DialysisGoal = trim(in.DialysisGoal)
	in.FluidIntake = trim(in.FluidIntake)
	return in
}

// validateTrackingInput checks the numeric fields and returns the derived
// weight gain, e.g. dry "60" and current "62.5" give "2.50".
func validateTrackingInput(in model.TrackingInput) (string, error) {
	if in.DryWeight == nil || in.CurrentWeight == nil {
		return "", invalid(ErrTrackingValidation, "please enter valid weights")
	}

	dry, err := validation.ParseDecimal("dry weight", *in.DryWeight)
	if err != nil {
		return "", invalid(ErrTrackingValidation, "please enter valid weights")
	}
	current, err := validation.ParseDecimal("current weight", *in.CurrentWeight)
	if err != nil {
		return "", invalid(ErrTrackingValidation, "please enter valid weights")
	}

	if in.DialysisGoal != nil {
		err = validation.ValidateOptionalDecimal("dialysis goal", *in.DialysisGoal)
		if err != nil {
			return "", invalid(ErrTrackingValidation, err.Error())
		}
	}
	if in.FluidIntake != nil {
		err = validation.ValidateOptionalDecimal("fluid intake", *in.FluidIntake)
		if err != nil {
			return "", invalid(ErrTrackingValidation, err.Error())
		}
	}

	return current.Sub(dry).StringFixed(2), nil
}

// HistoryView is the history screen state: the list and the entry opened in
// the detail view, if any.
type HistoryView struct {
	Records  []*model.TrackingRecord
	Selected *model.TrackingRecord
}

// SelectEntry opens record in the detail view. It never touches the store.
func (v HistoryView) SelectEntry(record *model.TrackingRecord) HistoryView {
	v.Selected = record
	return v
}

// SelectDate selects the listed record with the given date. An unknown date
// leaves the selection unchanged.
func (v HistoryView) SelectDate(date string) HistoryView {
	for _, r := range v.Records {
		if r.Date == date {
			return v.SelectEntry(r)
		}
	}
	return v
}
