package model

import (
	"time"
)

const (
	ExerciseStatusInProgress = "in_progress"
	ExerciseStatusCompleted  = "completed"
	ExerciseStatusAbandoned  = "abandoned"
)

// Exercise is one materialized run of a (usually templated) exercise for a
// partnership. Mutated only through the exercise service; never deleted,
// only status-transitioned.
type Exercise struct {
	ID                string     `db:"id" json:"id"`
	PartnershipID     string     `db:"partnership_id" json:"partnershipId"`
	InitiatorID       string     `db:"initiator_id" json:"initiatorId"`
	PartnerID         string     `db:"partner_id" json:"partnerId"`
	TemplateID        *string    `db:"template_id" json:"templateId,omitempty"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	Type              string     `db:"type" json:"type"`
	Status            string     `db:"status" json:"status"`
	TotalSteps        int        `db:"total_steps" json:"totalSteps"`
	CurrentStepNumber int        `db:"current_step_number" json:"currentStepNumber"`
	CurrentOwnerID    *string    `db:"current_owner_id" json:"currentOwnerId,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
	CompletedAt       *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

func (e *Exercise) IsParticipant(userID string) bool {
	return userID == e.InitiatorID || userID == e.PartnerID
}

// OtherParticipant returns the participant that is not userID.
func (e *Exercise) OtherParticipant(userID string) string {
	if userID == e.InitiatorID {
		return e.PartnerID
	}
	return e.InitiatorID
}

func (e *Exercise) IsActive() bool {
	return e.Status == ExerciseStatusInProgress
}

func ValidExerciseStatus(status string) bool {
	switch status {
	case ExerciseStatusInProgress, ExerciseStatusCompleted, ExerciseStatusAbandoned:
		return true
	}
	return false
}
