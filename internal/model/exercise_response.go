package model

import "time"

// ExerciseResponse records one participant's answer to one step. Exactly one
// of ResponseText, ResponseOption, AudioRef is populated. Never mutated or
// deleted; at most one response exists per (step, user) pair.
type ExerciseResponse struct {
	ID             string    `db:"id" json:"id"`
	ExerciseID     string    `db:"exercise_id" json:"exerciseId"`
	StepID         string    `db:"step_id" json:"stepId"`
	UserID         string    `db:"user_id" json:"userId"`
	ResponseText   *string   `db:"response_text" json:"responseText,omitempty"`
	ResponseOption *string   `db:"response_option" json:"responseOption,omitempty"`
	AudioRef       *string   `db:"audio_ref" json:"audioRef,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
