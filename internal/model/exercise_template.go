package model

import "time"

// ExerciseTemplate is a reusable blueprint for an exercise type. Steps holds
// an opaque JSON array of step blueprints; it is parsed defensively at
// materialization time rather than trusted as a fixed schema.
type ExerciseTemplate struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Type        string    `db:"type" json:"type"`
	Description string    `db:"description" json:"description"`
	Steps       string    `db:"steps" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// StepBlueprint is the loose shape of one entry in a template's steps JSON.
// Missing role defaults to "both" and missing response kind to "text".
type StepBlueprint struct {
	Title           string `json:"title"`
	Instructions    string `json:"instructions"`
	Prompt          string `json:"prompt"`
	ResponseKind    string `json:"response_kind"`
	Role            string `json:"role"`
	Required        bool   `json:"required"`
	TimeEstimateMin *int   `json:"time_estimate_min"`
}
