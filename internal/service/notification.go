package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
)

var (
	ErrInvalidCategory     = errors.New("invalid notification category")
	ErrInvalidSubscription = errors.New("endpoint and keys are required")
)

// NotificationSettingsService manages per-category preferences and push
// subscriptions for a user.
type NotificationSettingsService struct {
	prefRepo repository.NotificationPreferenceRepository
	subRepo  repository.PushSubscriptionRepository
}

func NewNotificationSettingsService(
	prefRepo repository.NotificationPreferenceRepository,
	subRepo repository.PushSubscriptionRepository,
) *NotificationSettingsService {
	return &NotificationSettingsService{
		prefRepo: prefRepo,
		subRepo:  subRepo,
	}
}

// Preferences returns the user's effective per-category map. Categories
// without a stored row default to enabled.
func (s *NotificationSettingsService) Preferences(userID string) (map[string]bool, error) {
	stored, err := s.prefRepo.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	preferences := map[string]bool{
		model.NotificationCategoryExercises:  true,
		model.NotificationCategoryMessages:   true,
		model.NotificationCategoryMilestones: true,
	}
	for _, preference := range stored {
		preferences[preference.Category] = preference.Enabled
	}

	return preferences, nil
}

func (s *NotificationSettingsService) SetPreference(userID, category string, enabled bool) error {
	if !model.ValidNotificationCategory(category) {
		return ErrInvalidCategory
	}

	return s.prefRepo.Upsert(userID, category, enabled)
}

func (s *NotificationSettingsService) Subscribe(userID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, ErrInvalidSubscription
	}

	subscription := &model.PushSubscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: time.Now(),
	}

	err := s.subRepo.Create(subscription)
	if err != nil {
		return nil, fmt.Errorf("failed to store subscription: %w", err)
	}

	return subscription, nil
}

func (s *NotificationSettingsService) Unsubscribe(userID, endpoint string) error {
	return s.subRepo.DeleteByEndpoint(userID, endpoint)
}
