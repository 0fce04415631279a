package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentReminder struct {
	to, name, medName string
}

type fakeEmailer struct {
	mu   sync.Mutex
	sent []sentReminder
	err  error
}

func (f *fakeEmailer) SendMedicationReminder(_ context.Context, email, name, medName, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReminder{to: email, name: name, medName: medName})
	return nil
}

type fakeTexter struct {
	mu       sync.Mutex
	messages map[string][]string
	err      error
}

func (f *fakeTexter) Send(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.messages == nil {
		f.messages = map[string][]string{}
	}
	f.messages[phone] = append(f.messages[phone], message)
	return nil
}

func TestReminderSendDue(t *testing.T) {
	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)
	meds := NewMedicationService(repository.NewMedicationRepository(database), live.NewHub())

	emailUser := createTestUser(t, database)
	require.NoError(t, profiles.Create(&model.Profile{UserID: emailUser.ID, Name: "Asha"}))

	phone := "+919876543210"
	phoneUser := &model.User{ID: uuid.New().String(), Phone: &phone, CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(phoneUser))

	_, err := meds.Add(emailUser.ID, MedicationInput{MedName: "Sevelamer", Dose: "800 mg", Time: "8:00 AM"})
	require.NoError(t, err)
	_, err = meds.Add(phoneUser.ID, MedicationInput{MedName: "Iron", Dose: "1 tab", Time: "08:00"})
	require.NoError(t, err)
	_, err = meds.Add(phoneUser.ID, MedicationInput{MedName: "Calcitriol", Dose: "1 cap", Time: "9:00 PM"})
	require.NoError(t, err)

	loc := time.FixedZone("IST", 5*3600+1800)
	emailer := &fakeEmailer{}
	texter := &fakeTexter{}
	m := metrics.New()
	svc := NewReminderService(repository.NewMedicationRepository(database), users, profiles, emailer, texter, m, "KidneyMate", loc)

	// 02:30 UTC is 08:00 in IST.
	sent, err := svc.SendDue(context.Background(), time.Date(2025, 1, 2, 2, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, emailer.sent, 1)
	assert.Equal(t, sentReminder{to: *emailUser.Email, name: "Asha", medName: "Sevelamer"}, emailer.sent[0])

	require.Len(t, texter.messages[phone], 1)
	assert.Contains(t, texter.messages[phone][0], "Iron")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent.WithLabelValues("email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent.WithLabelValues("sms", "ok")))

	sent, err = svc.SendDue(context.Background(), time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderFailuresAreSkipped(t *testing.T) {
	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)
	meds := NewMedicationService(repository.NewMedicationRepository(database), live.NewHub())

	first := createTestUser(t, database)
	second := createTestUser(t, database)
	for _, u := range []*model.User{first, second} {
		_, err := meds.Add(u.ID, MedicationInput{MedName: "Iron", Dose: "1 tab", Time: "21:00"})
		require.NoError(t, err)
	}

	m := metrics.New()
	svc := NewReminderService(repository.NewMedicationRepository(database), users, profiles,
		&fakeEmailer{err: errors.New("resend down")}, &fakeTexter{}, m, "KidneyMate", time.UTC)

	sent, err := svc.SendDue(context.Background(), time.Date(2025, 1, 2, 21, 0, 30, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemindersSent.WithLabelValues("email", "error")))
}

func TestReminderStartStop(t *testing.T) {
	database := newTestDB(t)
	svc := NewReminderService(
		repository.NewMedicationRepository(database),
		repository.NewUserRepository(database),
		repository.NewProfileRepository(database),
		&fakeEmailer{}, &fakeTexter{}, nil, "KidneyMate", time.UTC,
	)

	require.NoError(t, svc.Start())
	svc.Stop()
}
