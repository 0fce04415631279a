package service

import (
	"strings"

	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.profileRepo.ByUserID(userID)
}

// UpdateName sets the display name, e.g. after a phone sign-up.
func (s *ProfileService) UpdateName(userID, name string) (*model.Profile, error) {
	name = strings.TrimSpace(name)

	err := validation.ValidateName(name)
	if err != nil {
		return nil, invalid(ErrAuthValidation, err.Error())
	}

	err = s.profileRepo.UpdateName(userID, name)
	if err != nil {
		return nil, err
	}

	return s.profileRepo.ByUserID(userID)
}
