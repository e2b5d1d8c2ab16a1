package model

import "time"

const (
	NotificationCategoryExercises  = "exercises"
	NotificationCategoryMessages   = "messages"
	NotificationCategoryMilestones = "milestones"
)

func ValidNotificationCategory(category string) bool {
	switch category {
	case NotificationCategoryExercises, NotificationCategoryMessages, NotificationCategoryMilestones:
		return true
	}
	return false
}

// NotificationPreference is a per-user, per-category opt-out. Absence of a
// row means the category is enabled.
type NotificationPreference struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Category  string    `db:"category" json:"category"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PushSubscription is one out-of-band web-push endpoint for a user, used
// when no live connection exists.
type PushSubscription struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"-"`
	Auth      string    `db:"auth" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
