package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/store"
)

// pushTTL is how long a push service keeps an undelivered notification, in seconds.
const pushTTL = 300

var errSubscriptionGone = errors.New("subscription expired")

type sendFunc func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Service delivers Web Push notifications to the browsers captains subscribed.
type Service struct {
	store   store.Store
	options webpush.Options
	send    sendFunc
	log     *logrus.Entry
}

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string // mailto:referee@example.com
}

func NewService(st store.Store, cfg Config, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		store: st,
		options: webpush.Options{
			Subscriber:      cfg.VAPIDSubject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             pushTTL,
		},
		send: webpush.SendNotification,
		log:  log.WithField("component", "push"),
	}
}

// Enabled reports whether VAPID keys are configured.
func (s *Service) Enabled() bool {
	return s.options.VAPIDPublicKey != "" && s.options.VAPIDPrivateKey != ""
}

// GetPublicKey returns the VAPID public key browsers subscribe with.
func (s *Service) GetPublicKey() string {
	return s.options.VAPIDPublicKey
}

type NotificationPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Badge string                 `json:"badge,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
}

// SendToUser pushes payload to every subscription of a user. Expired
// subscriptions are dropped. It fails only when no delivery succeeded.
func (s *Service) SendToUser(ctx context.Context, userID string, payload NotificationPayload) error {
	subs, err := s.store.GetPushSubscriptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get subscriptions: %w", err)
	}
	if len(subs) == 0 {
		s.log.Debugf("No push subscriptions for user %s", userID)
		return nil
	}

	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	delivered := 0
	for _, sub := range subs {
		err := s.deliver(message, sub)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, errSubscriptionGone):
			s.log.Infof("Subscription expired, removing: %s", sub.Endpoint)
			if err := s.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				s.log.WithError(err).Error("Failed to delete subscription")
			}
		default:
			s.log.WithError(err).Warnf("Push to %s failed", sub.Endpoint)
			lastErr = err
		}
	}

	if delivered > 0 || lastErr == nil {
		return nil
	}
	return lastErr
}

func (s *Service) deliver(message []byte, sub store.PushSubscription) error {
	opts := s.options
	resp, err := s.send(message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &opts)
	if err != nil {
		return err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return errSubscriptionGone
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("push service answered %d", resp.StatusCode)
	}
	return nil
}

// SendToMultipleUsers pushes payload to several users in the background.
func (s *Service) SendToMultipleUsers(ctx context.Context, userIDs []string, payload NotificationPayload) {
	for _, userID := range userIDs {
		go func(id string) {
			if err := s.SendToUser(ctx, id, payload); err != nil {
				s.log.WithError(err).Warnf("Failed to push to user %s", id)
			}
		}(userID)
	}
}
