package notify

import (
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/usetandem/tandem/internal/model"
)

// WebPushSender sends payloads to browser push services using VAPID keys.
type WebPushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

// NewWebPushSender returns nil when the VAPID keys are not configured, which
// disables push delivery (the dispatcher tolerates a nil sender).
func NewWebPushSender(vapidPublicKey, vapidPrivateKey, subscriber string) *WebPushSender {
	if vapidPublicKey == "" || vapidPrivateKey == "" {
		slog.Info("web push disabled, VAPID keys not configured")
		return nil
	}

	return &WebPushSender{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
	}
}

func (s *WebPushSender) Send(subscription *model.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpush.Keys{
			P256dh: subscription.P256dh,
			Auth:   subscription.Auth,
		},
	}, &webpush.Options{
		TTL:             60,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionExpired
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	return nil
}
