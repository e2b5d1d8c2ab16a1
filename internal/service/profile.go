package service

import (
	"fmt"
	"time"

	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
	"github.com/usetandem/tandem/internal/validation"
)

type ProfileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.repo.ByUserID(userID)
}

func (s *ProfileService) Update(userID, name, timezone string) (*model.Profile, error) {
	err := validation.ValidateName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	profile, err := s.repo.ByUserID(userID)
	if err != nil {
		return nil, err
	}

	profile.Name = name
	if timezone != "" {
		profile.Timezone = timezone
	}
	profile.UpdatedAt = time.Now()

	err = s.repo.Update(profile)
	if err != nil {
		return nil, err
	}

	return profile, nil
}
