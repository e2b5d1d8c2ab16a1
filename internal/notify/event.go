package notify

import (
	"github.com/usetandem/tandem/internal/model"
)

type EventType string

const (
	EventNewExercise       EventType = "new_exercise"
	EventExerciseYourTurn  EventType = "exercise_your_turn"
	EventExerciseStep      EventType = "exercise_step_update"
	EventExerciseCompleted EventType = "exercise_completed"
	EventNewMessage        EventType = "new_message"
	EventNewMilestone      EventType = "new_milestone"
)

// Event is the payload delivered over the live channel and, as a condensed
// title/body/url form, over push subscriptions.
type Event struct {
	Type       EventType `json:"type"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	ExerciseID string    `json:"exercise_id,omitempty"`
	ActorID    string    `json:"actor_id"`
}

// Category maps an event type to the recipient's notification-preference
// category.
func (t EventType) Category() string {
	switch t {
	case EventNewMessage:
		return model.NotificationCategoryMessages
	case EventNewMilestone:
		return model.NotificationCategoryMilestones
	default:
		return model.NotificationCategoryExercises
	}
}
