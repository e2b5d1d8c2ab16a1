package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/observability"
	"github.com/usetandem/tandem/internal/realtime"
	"github.com/usetandem/tandem/internal/repository"
)

// ErrSubscriptionExpired marks a push endpoint the push service reports as
// gone; the subscription is removed as a side effect.
var ErrSubscriptionExpired = errors.New("push subscription expired")

// PushSender delivers one payload to one push subscription.
type PushSender interface {
	Send(subscription *model.PushSubscription, payload []byte) error
}

// Dispatcher delivers events to a user: live first via the connection
// registry, then asynchronously to any registered push subscriptions.
// Delivery is best-effort end to end; Dispatch never fails the caller.
type Dispatcher struct {
	registry realtime.Registry
	prefs    repository.NotificationPreferenceRepository
	subs     repository.PushSubscriptionRepository
	sender   PushSender
	appURL   string

	wg sync.WaitGroup
}

func NewDispatcher(
	registry realtime.Registry,
	prefs repository.NotificationPreferenceRepository,
	subs repository.PushSubscriptionRepository,
	sender PushSender,
	appURL string,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		prefs:    prefs,
		subs:     subs,
		sender:   sender,
		appURL:   appURL,
	}
}

// Dispatch sends event to userID. The live send is fire-and-forget: no
// acknowledgement is awaited and failures are only logged. Push delivery
// runs asynchronously; expired subscriptions are removed.
func (d *Dispatcher) Dispatch(userID string, event Event) {
	enabled, err := d.prefs.Enabled(userID, event.Type.Category())
	if err != nil {
		// Fail open: a broken preference read should not silence delivery.
		slog.Error("failed to read notification preference", "error", err, "user_id", userID, "category", event.Type.Category())
		enabled = true
	}
	if !enabled {
		observability.NotificationsDispatched.WithLabelValues("live", "skipped").Inc()
		observability.NotificationsDispatched.WithLabelValues("push", "skipped").Inc()
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode event", "error", err, "type", event.Type)
		return
	}

	d.sendLive(userID, payload)
	d.queuePush(userID, event)
}

func (d *Dispatcher) sendLive(userID string, payload []byte) {
	conn, ok := d.registry.Get(userID)
	if !ok {
		observability.NotificationsDispatched.WithLabelValues("live", "skipped").Inc()
		return
	}

	err := conn.Send(payload)
	if err != nil {
		// No retry: the push path covers the recipient.
		slog.Warn("live send failed", "error", err, "user_id", userID)
		observability.NotificationsDispatched.WithLabelValues("live", "failed").Inc()
		return
	}

	observability.NotificationsDispatched.WithLabelValues("live", "sent").Inc()
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

func (d *Dispatcher) queuePush(userID string, event Event) {
	subscriptions, err := d.subs.ByUser(userID)
	if err != nil {
		slog.Error("failed to load push subscriptions", "error", err, "user_id", userID)
		return
	}
	if len(subscriptions) == 0 || d.sender == nil {
		return
	}

	title, body := pushText(event)
	payload, err := json.Marshal(pushPayload{
		Title: title,
		Body:  body,
		URL:   d.targetURL(event),
	})
	if err != nil {
		slog.Error("failed to encode push payload", "error", err, "type", event.Type)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sendPush(userID, subscriptions, payload)
	}()
}

func (d *Dispatcher) sendPush(userID string, subscriptions []*model.PushSubscription, payload []byte) {
	for _, subscription := range subscriptions {
		err := d.sender.Send(subscription, payload)
		if err == nil {
			observability.NotificationsDispatched.WithLabelValues("push", "sent").Inc()
			continue
		}

		if errors.Is(err, ErrSubscriptionExpired) {
			observability.NotificationsDispatched.WithLabelValues("push", "expired").Inc()
			delErr := d.subs.Delete(subscription.ID)
			if delErr != nil {
				slog.Warn("failed to remove expired push subscription", "error", delErr, "subscription_id", subscription.ID)
			}
			continue
		}

		// Swallowed: push failures never surface to the original caller.
		slog.Warn("push send failed", "error", err, "user_id", userID, "subscription_id", subscription.ID)
		observability.NotificationsDispatched.WithLabelValues("push", "failed").Inc()
	}
}

// Flush waits for in-flight push deliveries. Used by tests and shutdown.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

func (d *Dispatcher) targetURL(event Event) string {
	switch event.Type {
	case EventNewMessage:
		return d.appURL + "/app/messages"
	case EventNewMilestone:
		return d.appURL + "/app/milestones"
	default:
		if event.ExerciseID != "" {
			return fmt.Sprintf("%s/app/exercises/%s", d.appURL, event.ExerciseID)
		}
		return d.appURL + "/app/exercises"
	}
}

func pushText(event Event) (string, string) {
	switch event.Type {
	case EventNewExercise:
		return event.Title, "Your partner started a new exercise with you."
	case EventExerciseYourTurn:
		return event.Title, "It's your turn to respond."
	case EventExerciseStep:
		return event.Title, "Your exercise moved to a different step."
	case EventExerciseCompleted:
		return event.Title, "You completed an exercise together."
	case EventNewMessage:
		return "New message", "Your partner sent you a message."
	case EventNewMilestone:
		return event.Title, "A new milestone was added."
	default:
		return event.Title, ""
	}
}
