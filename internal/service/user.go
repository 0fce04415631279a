package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
)

// Feature is a dashboard entry pointing at an API area.
type Feature struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var dashboardFeatures = []Feature{
	{Name: "Medication Reminders", Path: "/api/medications"},
	{Name: "Fluid & Diet Tracking", Path: "/api/tracking/today"},
	{Name: "Dialysis Scheduling", Path: "/api/technicians"},
	{Name: "Reports Upload & Access", Path: "/api/reports"},
	{Name: "Healthcare Schemes Info", Path: "/api/schemes"},
}

type Dashboard struct {
	User     *model.User `json:"user"`
	Name     string      `json:"name"`
	Greeting string      `json:"greeting"`
	Features []Feature   `json:"features"`
}

type UserService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	reportService     *ReportService
}

func NewUserService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	reportService *ReportService,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		reportService:     reportService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

// Dashboard is the signed-in landing view.
func (s *UserService) Dashboard(userID string) (*Dashboard, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, err
	}

	name := ""
	profile, err := s.profileRepository.ByUserID(userID)
	if err == nil {
		name = profile.Name
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &Dashboard{
		User:     user,
		Name:     name,
		Greeting: "Welcome, " + user.DisplayName(),
		Features: dashboardFeatures,
	}, nil
}

// DeleteAccount removes the user's stored files, then the user. Profile,
// tracking, medication and report rows cascade.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	_, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.reportService.DeleteAllFromStorage(ctx, userID)
	if err != nil {
		// Orphaned files are better than a failed deletion.
		slog.Warn("failed to delete user reports from storage", "user_id", userID, "error", err)
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
