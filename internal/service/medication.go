package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
)

// MedicationTopic is the live topic signalled when a user's medications change.
func MedicationTopic(userID string) string {
	return "medications:" + userID
}

type MedicationInput struct {
	MedName string `json:"medName"`
	Dose    string `json:"dose"`
	Time    string `json:"time"`
}

type MedicationService struct {
	repo repository.MedicationRepository
	hub  *live.Hub
}

func NewMedicationService(repo repository.MedicationRepository, hub *live.Hub) *MedicationService {
	return &MedicationService{
		repo: repo,
		hub:  hub,
	}
}

// Add stores a medication. Name, dose and time are all required. A time that
// reads as a clock time ("8:00 AM", "20:30") also schedules a daily reminder.
func (s *MedicationService) Add(userID string, in MedicationInput) (*model.Medication, error) {
	in.MedName = strings.TrimSpace(in.MedName)
	in.Dose = strings.TrimSpace(in.Dose)
	in.Time = strings.TrimSpace(in.Time)

	if in.MedName == "" || in.Dose == "" || in.Time == "" {
		return nil, invalid(ErrMedicationValidation, "please fill all fields")
	}
	if len(in.MedName) > 100 || len(in.Dose) > 100 || len(in.Time) > 50 {
		return nil, invalid(ErrMedicationValidation, "medication fields are too long")
	}

	reminderAt, _ := ParseReminderTime(in.Time)

	med := &model.Medication{
		ID:         uuid.New().String(),
		UserID:     userID,
		MedName:    in.MedName,
		Dose:       in.Dose,
		Time:       in.Time,
		ReminderAt: reminderAt,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.repo.Create(med)
	if err != nil {
		return nil, fmt.Errorf("failed to add medication: %w", err)
	}

	s.hub.Publish(MedicationTopic(userID))
	return med, nil
}

func (s *MedicationService) Medications(userID string) ([]*model.Medication, error) {
	meds, err := s.repo.Medications(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

// Stream is Medications as a live query.
func (s *MedicationService) Stream(ctx context.Context, userID string) (*live.Stream[[]*model.Medication], error) {
	return live.Watch(ctx, s.hub, MedicationTopic(userID), func() ([]*model.Medication, error) {
		return s.Medications(userID)
	})
}

// Delete removes one of the user's medications. Another user's id reads as
// not found.
func (s *MedicationService) Delete(userID, medicationID string) error {
	err := s.repo.Delete(userID, medicationID)
	if err != nil {
		return err
	}

	s.hub.Publish(MedicationTopic(userID))
	return nil
}

var reminderLayouts = []string{
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// ParseReminderTime normalizes a free-form dose time to "15:04".
func ParseReminderTime(value string) (string, bool) {
	value = strings.ToUpper(strings.Join(strings.Fields(value), " "))
	value = strings.ReplaceAll(value, ".", "")

	for _, layout := range reminderLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
