package notify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/realtime"
	"github.com/usetandem/tandem/internal/repository"
)

type fakePrefs struct {
	disabled map[string]bool // category -> disabled
	err      error
}

func (f *fakePrefs) ByUser(userID string) ([]*model.NotificationPreference, error) {
	return nil, nil
}

func (f *fakePrefs) Enabled(userID, category string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.disabled[category], nil
}

func (f *fakePrefs) Upsert(userID, category string, enabled bool) error {
	return nil
}

type fakeSubs struct {
	subscriptions []*model.PushSubscription
	deleted       []string
}

func (f *fakeSubs) Create(subscription *model.PushSubscription) error {
	f.subscriptions = append(f.subscriptions, subscription)
	return nil
}

func (f *fakeSubs) ByUser(userID string) ([]*model.PushSubscription, error) {
	var out []*model.PushSubscription
	for _, subscription := range f.subscriptions {
		if subscription.UserID == userID {
			out = append(out, subscription)
		}
	}
	return out, nil
}

func (f *fakeSubs) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSubs) DeleteByEndpoint(userID, endpoint string) error {
	return nil
}

type fakeConn struct {
	messages [][]byte
	err      error
}

func (c *fakeConn) Send(data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, data)
	return nil
}

type fakeSender struct {
	sent [][]byte
	errs map[string]error // endpoint -> error
}

func (s *fakeSender) Send(subscription *model.PushSubscription, payload []byte) error {
	if err, ok := s.errs[subscription.Endpoint]; ok {
		return err
	}
	s.sent = append(s.sent, payload)
	return nil
}

var _ repository.NotificationPreferenceRepository = (*fakePrefs)(nil)
var _ repository.PushSubscriptionRepository = (*fakeSubs)(nil)

func TestDispatchLiveDelivery(t *testing.T) {
	registry := realtime.NewRegistry()
	conn := &fakeConn{}
	registry.Set("user-1", conn)

	d := NewDispatcher(registry, &fakePrefs{}, &fakeSubs{}, nil, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventExerciseYourTurn, Title: "Check-in", ExerciseID: "ex-1"})
	d.Flush()

	require.Len(t, conn.messages, 1)

	var event Event
	require.NoError(t, json.Unmarshal(conn.messages[0], &event))
	assert.Equal(t, EventExerciseYourTurn, event.Type)
	assert.Equal(t, "ex-1", event.ExerciseID)
}

func TestDispatchNoConnectionNoSubscriptions(t *testing.T) {
	d := NewDispatcher(realtime.NewRegistry(), &fakePrefs{}, &fakeSubs{}, nil, "http://localhost")

	// Nobody reachable; must not panic or block.
	d.Dispatch("user-1", Event{Type: EventNewMessage})
	d.Flush()
}

func TestDispatchPreferenceDisabled(t *testing.T) {
	registry := realtime.NewRegistry()
	conn := &fakeConn{}
	registry.Set("user-1", conn)

	prefs := &fakePrefs{disabled: map[string]bool{model.NotificationCategoryMessages: true}}
	d := NewDispatcher(registry, prefs, &fakeSubs{}, nil, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventNewMessage})
	d.Flush()
	assert.Empty(t, conn.messages)

	// Other categories still deliver.
	d.Dispatch("user-1", Event{Type: EventNewExercise, Title: "New"})
	d.Flush()
	assert.Len(t, conn.messages, 1)
}

func TestDispatchPreferenceReadFailureFailsOpen(t *testing.T) {
	registry := realtime.NewRegistry()
	conn := &fakeConn{}
	registry.Set("user-1", conn)

	prefs := &fakePrefs{err: errors.New("db down")}
	d := NewDispatcher(registry, prefs, &fakeSubs{}, nil, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventNewMilestone, Title: "Anniversary"})
	d.Flush()
	assert.Len(t, conn.messages, 1)
}

func TestDispatchLiveSendFailureDoesNotPropagate(t *testing.T) {
	registry := realtime.NewRegistry()
	registry.Set("user-1", &fakeConn{err: realtime.ErrSendBufferFull})

	d := NewDispatcher(registry, &fakePrefs{}, &fakeSubs{}, nil, "http://localhost")

	// Fire-and-forget: a full buffer is logged, never returned.
	d.Dispatch("user-1", Event{Type: EventNewMessage})
	d.Flush()
}

func TestDispatchPushDelivery(t *testing.T) {
	subs := &fakeSubs{subscriptions: []*model.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push.example/a"},
		{ID: "sub-2", UserID: "user-1", Endpoint: "https://push.example/b"},
	}}
	sender := &fakeSender{}

	d := NewDispatcher(realtime.NewRegistry(), &fakePrefs{}, subs, sender, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventExerciseCompleted, Title: "Done", ExerciseID: "ex-1"})
	d.Flush()

	require.Len(t, sender.sent, 2)

	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(sender.sent[0], &payload))
	assert.Equal(t, "Done", payload.Title)
	assert.Equal(t, "http://localhost/app/exercises/ex-1", payload.URL)
}

func TestDispatchExpiredSubscriptionRemoved(t *testing.T) {
	subs := &fakeSubs{subscriptions: []*model.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push.example/dead"},
		{ID: "sub-2", UserID: "user-1", Endpoint: "https://push.example/live"},
	}}
	sender := &fakeSender{errs: map[string]error{
		"https://push.example/dead": ErrSubscriptionExpired,
	}}

	d := NewDispatcher(realtime.NewRegistry(), &fakePrefs{}, subs, sender, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventNewMessage})
	d.Flush()

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"sub-1"}, subs.deleted)
}

func TestDispatchPushFailureSwallowed(t *testing.T) {
	subs := &fakeSubs{subscriptions: []*model.PushSubscription{
		{ID: "sub-1", UserID: "user-1", Endpoint: "https://push.example/a"},
	}}
	sender := &fakeSender{errs: map[string]error{
		"https://push.example/a": errors.New("503 from push service"),
	}}

	d := NewDispatcher(realtime.NewRegistry(), &fakePrefs{}, subs, sender, "http://localhost")

	d.Dispatch("user-1", Event{Type: EventNewMessage})
	d.Flush()

	assert.Empty(t, sender.sent)
	assert.Empty(t, subs.deleted)
}

func TestEventCategories(t *testing.T) {
	assert.Equal(t, model.NotificationCategoryExercises, EventNewExercise.Category())
	assert.Equal(t, model.NotificationCategoryExercises, EventExerciseYourTurn.Category())
	assert.Equal(t, model.NotificationCategoryExercises, EventExerciseStep.Category())
	assert.Equal(t, model.NotificationCategoryExercises, EventExerciseCompleted.Category())
	assert.Equal(t, model.NotificationCategoryMessages, EventNewMessage.Category())
	assert.Equal(t, model.NotificationCategoryMilestones, EventNewMilestone.Category())
}
