package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrSubscriptionNotFound = errors.New("push subscription not found")
)

type NotificationPreferenceRepository interface {
	ByUser(userID string) ([]*model.NotificationPreference, error)
	// Enabled reports whether a category is enabled for a user. Missing
	// rows default to enabled.
	Enabled(userID, category string) (bool, error)
	Upsert(userID, category string, enabled bool) error
}

type notificationPreferenceRepository struct {
	db *sqlx.DB
}

func NewNotificationPreferenceRepository(db *sqlx.DB) NotificationPreferenceRepository {
	return &notificationPreferenceRepository{db: db}
}

func (r *notificationPreferenceRepository) ByUser(userID string) ([]*model.NotificationPreference, error) {
	var preferences []*model.NotificationPreference
	query := `SELECT * FROM notification_preferences WHERE user_id = $1 ORDER BY category ASC`

	err := r.db.Select(&preferences, query, userID)
	if err != nil {
		return nil, err
	}

	return preferences, nil
}

func (r *notificationPreferenceRepository) Enabled(userID, category string) (bool, error) {
	var enabled bool
	query := `SELECT enabled FROM notification_preferences WHERE user_id = $1 AND category = $2`

	err := r.db.QueryRow(query, userID, category).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return enabled, nil
}

func (r *notificationPreferenceRepository) Upsert(userID, category string, enabled bool) error {
	query := `INSERT INTO notification_preferences (id, user_id, category, enabled, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, category) DO UPDATE SET enabled = $4, updated_at = $5`

	_, err := r.db.Exec(query, uuid.New().String(), userID, category, enabled, time.Now())
	return err
}

type PushSubscriptionRepository interface {
	Create(subscription *model.PushSubscription) error
	ByUser(userID string) ([]*model.PushSubscription, error)
	Delete(id string) error
	DeleteByEndpoint(userID, endpoint string) error
}

type pushSubscriptionRepository struct {
	db *sqlx.DB
}

func NewPushSubscriptionRepository(db *sqlx.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) Create(subscription *model.PushSubscription) error {
	query := `INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (endpoint) DO UPDATE SET user_id = $2, p256dh = $4, auth = $5`

	_, err := r.db.Exec(query,
		subscription.ID,
		subscription.UserID,
		subscription.Endpoint,
		subscription.P256dh,
		subscription.Auth,
		subscription.CreatedAt,
	)

	return err
}

func (r *pushSubscriptionRepository) ByUser(userID string) ([]*model.PushSubscription, error) {
	var subscriptions []*model.PushSubscription
	query := `SELECT * FROM push_subscriptions WHERE user_id = $1`

	err := r.db.Select(&subscriptions, query, userID)
	if err != nil {
		return nil, err
	}

	return subscriptions, nil
}

func (r *pushSubscriptionRepository) Delete(id string) error {
	query := `DELETE FROM push_subscriptions WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(userID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`

	result, err := r.db.Exec(query, userID, endpoint)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}
