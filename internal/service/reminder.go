package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/robfig/cron/v3"
)

type ReminderEmailer interface {
	SendMedicationReminder(ctx context.Context, email, name, medName, dose, at string) error
}

type TextSender interface {
	Send(ctx context.Context, phone, message string) error
}

// ReminderService announces medications at their reminder time.
type ReminderService struct {
	medRepo     repository.MedicationRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	email       ReminderEmailer
	sms         TextSender
	metrics     *metrics.Metrics
	appName     string
	loc         *time.Location
	cron        *cron.Cron
}

func NewReminderService(
	medRepo repository.MedicationRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	email ReminderEmailer,
	sms TextSender,
	m *metrics.Metrics,
	appName string,
	loc *time.Location,
) *ReminderService {
	return &ReminderService{
		medRepo:     medRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		email:       email,
		sms:         sms,
		metrics:     m,
		appName:     appName,
		loc:         loc,
	}
}

// Start runs SendDue at the top of every minute until Stop.
func (s *ReminderService) Start() error {
	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc("* * * * *", func() {
		_, err := s.SendDue(context.Background(), time.Now())
		if err != nil {
			slog.Error("medication reminders failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	c.Start()
	s.cron = c
	slog.Info("medication reminders started", "timezone", s.loc.String())
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (s *ReminderService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// SendDue notifies the owners of every medication scheduled at now's
// minute. Delivery failures are logged and skipped. It returns the number of
// notifications delivered.
func (s *ReminderService) SendDue(ctx context.Context, now time.Time) (int, error) {
	at := now.In(s.loc).Format("15:04")

	meds, err := s.medRepo.DueAt(at)
	if err != nil {
		return 0, fmt.Errorf("failed to load due medications: %w", err)
	}
	if len(meds) == 0 {
		return 0, nil
	}

	slog.Debug("sending medication reminders", "at", at, "count", len(meds))

	recipients := map[string]*recipient{}
	sent := 0
	for _, med := range meds {
		r, ok := recipients[med.UserID]
		if !ok {
			r, err = s.recipient(med.UserID)
			if err != nil {
				slog.Error("failed to load reminder recipient", "error", err, "user_id", med.UserID)
				continue
			}
			recipients[med.UserID] = r
		}

		sent += s.notify(ctx, r, med)
	}

	return sent, nil
}

type recipient struct {
	user *model.User
	name string
}

func (s *ReminderService) recipient(userID string) (*recipient, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	name := "there"
	profile, err := s.profileRepo.ByUserID(userID)
	if err == nil && profile.Name != "" {
		name = profile.Name
	} else if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		slog.Warn("failed to load profile for reminder", "error", err, "user_id", userID)
	}

	return &recipient{user: user, name: name}, nil
}

func (s *ReminderService) notify(ctx context.Context, r *recipient, med *model.Medication) int {
	sent := 0

	if r.user.HasEmail() {
		err := s.email.SendMedicationReminder(ctx, *r.user.Email, r.name, med.MedName, med.Dose, med.Time)
		sent += s.record("email", err, med)
	}

	if r.user.HasPhone() {
		err := s.sms.Send(ctx, *r.user.Phone, medicationReminderSMS(med.MedName, med.Dose, s.appName))
		sent += s.record("sms", err, med)
	}

	return sent
}

func (s *ReminderService) record(channel string, err error, med *model.Medication) int {
	result := "ok"
	if err != nil {
		result = "error"
		slog.Error("failed to send medication reminder", "error", err, "channel", channel, "medication_id", med.ID, "user_id", med.UserID)
	}
	if s.metrics != nil {
		s.metrics.RemindersSent.WithLabelValues(channel, result).Inc()
	}

	if err != nil {
		return 0
	}
	return 1
}
