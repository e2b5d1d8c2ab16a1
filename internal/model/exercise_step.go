package model

import "time"

const (
	StepRoleInitiator = "initiator"
	StepRolePartner   = "partner"
	StepRoleBoth      = "both"
)

const (
	ResponseKindText   = "text"
	ResponseKindOption = "option"
	ResponseKindAudio  = "audio"
)

// ExerciseStep is created once at materialization time and immutable
// thereafter. Step numbers are contiguous starting at 1 within an exercise.
type ExerciseStep struct {
	ID              string    `db:"id" json:"id"`
	ExerciseID      string    `db:"exercise_id" json:"exerciseId"`
	StepNumber      int       `db:"step_number" json:"stepNumber"`
	Title           string    `db:"title" json:"title"`
	Instructions    string    `db:"instructions" json:"instructions"`
	Prompt          string    `db:"prompt" json:"prompt"`
	ResponseKind    string    `db:"response_kind" json:"responseKind"`
	Role            string    `db:"role" json:"role"`
	Required        bool      `db:"required" json:"required"`
	TimeEstimateMin *int      `db:"time_estimate_min" json:"timeEstimateMin,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

func ValidStepRole(role string) bool {
	switch role {
	case StepRoleInitiator, StepRolePartner, StepRoleBoth:
		return true
	}
	return false
}

func ValidResponseKind(kind string) bool {
	switch kind {
	case ResponseKindText, ResponseKindOption, ResponseKindAudio:
		return true
	}
	return false
}
