package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingService(t *testing.T) (*TrackingService, string) {
	t.Helper()

	database := newTestDB(t)
	user := createTestUser(t, database)

	svc := NewTrackingService(repository.NewTrackingRepository(database), live.NewHub(), metrics.New())
	svc.now = clock(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	return svc, user.ID
}

func weights(dry, current string) model.TrackingInput {
	return model.TrackingInput{DryWeight: ptr(dry), CurrentWeight: ptr(current)}
}

func TestSaveTodayComputesWeightGain(t *testing.T) {
	svc, userID := newTrackingService(t)

	tests := []struct {
		dry, current, want string
	}{
		{"60", "62.5", "2.50"},
		{"70.25", "70", "-0.25"},
		{"58", "58", "0.00"},
		{"60.004", "61.01", "1.01"},
	}

	for i, tt := range tests {
		date := fmt.Sprintf("2025-01-%02d", i+1)
		record, err := svc.SaveToday(userID, date, weights(tt.dry, tt.current))
		require.NoError(t, err)
		assert.Equal(t, tt.want, record.WeightGain, "dry=%s current=%s", tt.dry, tt.current)
	}
}

func TestSaveTodayStoresTrimmedNumbers(t *testing.T) {
	svc, userID := newTrackingService(t)

	in := weights(" 60 ", "62.5\n")
	in.FluidIntake = ptr(" 1.5")

	_, err := svc.SaveToday(userID, "2025-01-02", in)
	require.NoError(t, err)

	record, err := svc.LoadToday(userID, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "60", record.DryWeight)
	assert.Equal(t, "62.5", record.CurrentWeight)
	assert.Equal(t, "1.5", record.FluidIntake)
	assert.Equal(t, "2.50", record.WeightGain)
}

func TestSaveTodayRejectsMissingWeights(t *testing.T) {
	svc, userID := newTrackingService(t)

	inputs := map[string]model.TrackingInput{
		"no weights":   {Breakfast: ptr("toast")},
		"dry only":     {DryWeight: ptr("60"), Breakfast: ptr("toast")},
		"current only": {CurrentWeight: ptr("62"), Breakfast: ptr("toast")},
		"not a number": {DryWeight: ptr("sixty"), CurrentWeight: ptr("62")},
		"empty weight": {DryWeight: ptr(""), CurrentWeight: ptr("62")},
		"bad fluid":    {DryWeight: ptr("60"), CurrentWeight: ptr("62"), FluidIntake: ptr("lots")},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SaveToday(userID, "2025-01-02", in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTrackingValidation))

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}

	record, err := svc.LoadToday(userID, "2025-01-02")
	require.NoError(t, err)
	assert.True(t, record.IsEmpty())
	assert.Empty(t, record.Breakfast)

	assert.Equal(t, 6.0, testutil.ToFloat64(svc.metrics.TrackingSaves.WithLabelValues("invalid")))
}

func TestSaveTodayRejectsBadDate(t *testing.T) {
	svc, userID := newTrackingService(t)

	_, err := svc.SaveToday(userID, "02/01/2025", weights("60", "61"))
	assert.ErrorIs(t, err, ErrTrackingValidation)

	_, err = svc.LoadToday(userID, "yesterday")
	assert.ErrorIs(t, err, ErrTrackingValidation)
}

func TestSaveTodayMergesPartialSaves(t *testing.T) {
	svc, userID := newTrackingService(t)

	first := weights("60", "62.5")
	first.Breakfast = ptr("toast")
	_, err := svc.SaveToday(userID, "2025-01-02", first)
	require.NoError(t, err)

	second := weights("60", "62")
	second.Lunch = ptr("rice")
	_, err = svc.SaveToday(userID, "2025-01-02", second)
	require.NoError(t, err)

	record, err := svc.LoadToday(userID, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "toast", record.Breakfast)
	assert.Equal(t, "rice", record.Lunch)
	assert.Equal(t, "62", record.CurrentWeight)
	assert.Equal(t, "2.00", record.WeightGain)

	history, err := svc.History(userID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSaveTodayLatestValueWins(t *testing.T) {
	svc, userID := newTrackingService(t)

	in := weights("60", "61")
	in.Dinner = ptr("dal")
	first, err := svc.SaveToday(userID, "2025-01-02", in)
	require.NoError(t, err)

	in.Dinner = ptr("khichdi")
	second, err := svc.SaveToday(userID, "2025-01-02", in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	record, err := svc.LoadToday(userID, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "khichdi", record.Dinner)
}

func TestLoadTodayEmptyDefaults(t *testing.T) {
	svc, userID := newTrackingService(t)

	record, err := svc.LoadToday(userID, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, &model.TrackingRecord{Date: "2025-01-02"}, record)
}

func TestToday(t *testing.T) {
	svc, _ := newTrackingService(t)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, "2025-03-09", svc.Today())
}

func TestHistoryCapsAndOrders(t *testing.T) {
	svc, userID := newTrackingService(t)

	start := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := range 35 {
		date := start.AddDate(0, 0, i).Format(model.DateLayout)
		_, err := svc.SaveToday(userID, date, weights("60", "61"))
		require.NoError(t, err)
	}

	history, err := svc.History(userID, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 30)

	assert.Equal(t, start.AddDate(0, 0, 34).Format(model.DateLayout), history[0].Date)
	assert.Equal(t, start.AddDate(0, 0, 5).Format(model.DateLayout), history[29].Date)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].UpdatedAt.After(history[i-1].UpdatedAt))
	}

	// Re-saving an old day moves it to the top.
	_, err = svc.SaveToday(userID, start.Format(model.DateLayout), weights("60", "60.5"))
	require.NoError(t, err)

	history, err = svc.History(userID, 5)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, start.Format(model.DateLayout), history[0].Date)
}

func TestHistoryIsPerUser(t *testing.T) {
	svc, userID := newTrackingService(t)

	_, err := svc.SaveToday(userID, "2025-01-02", weights("60", "61"))
	require.NoError(t, err)

	history, err := svc.History("someone-else", 30)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestClampHistoryLimit(t *testing.T) {
	assert.Equal(t, 30, ClampHistoryLimit(0))
	assert.Equal(t, 30, ClampHistoryLimit(-4))
	assert.Equal(t, 10, ClampHistoryLimit(10))
	assert.Equal(t, 100, ClampHistoryLimit(500))
}

func TestStreamHistory(t *testing.T) {
	svc, userID := newTrackingService(t)

	_, err := svc.SaveToday(userID, "2025-01-01", weights("60", "61"))
	require.NoError(t, err)

	stream, err := svc.StreamHistory(context.Background(), userID, 30)
	require.NoError(t, err)
	defer stream.Close()

	snap := receive(t, stream.C)
	require.NoError(t, snap.Err)
	require.Len(t, snap.Items, 1)

	in := weights("60", "62")
	in.Breakfast = ptr("poha")
	_, err = svc.SaveToday(userID, "2025-01-02", in)
	require.NoError(t, err)

	snap = receive(t, stream.C)
	require.NoError(t, snap.Err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "2025-01-02", snap.Items[0].Date)
	assert.Equal(t, "poha", snap.Items[0].Breakfast)

	stream.Close()
	assert.Zero(t, svc.hub.Subscribers(TrackingTopic(userID)))
}

func TestStreamHistoryStopsOnCancel(t *testing.T) {
	svc, userID := newTrackingService(t)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := svc.StreamHistory(ctx, userID, 0)
	require.NoError(t, err)

	snap := receive(t, stream.C)
	assert.Empty(t, snap.Items)

	cancel()
	stream.Close()

	_, open := <-stream.C
	assert.False(t, open)
	assert.Zero(t, svc.hub.Subscribers(TrackingTopic(userID)))
}

func TestHistoryViewSelectEntry(t *testing.T) {
	a := &model.TrackingRecord{Date: "2025-01-01"}
	b := &model.TrackingRecord{Date: "2025-01-02"}
	view := HistoryView{Records: []*model.TrackingRecord{b, a}}

	selected := view.SelectEntry(a)
	assert.Same(t, a, selected.Selected)
	assert.Nil(t, view.Selected)

	assert.Same(t, b, view.SelectDate("2025-01-02").Selected)
	assert.Nil(t, view.SelectDate("2024-12-31").Selected)
}

func receive[T any](t *testing.T, c <-chan live.Snapshot[T]) live.Snapshot[T] {
	t.Helper()

	select {
	case snap, ok := <-c:
		require.True(t, ok, "stream closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return live.Snapshot[T]{}
	}
}
