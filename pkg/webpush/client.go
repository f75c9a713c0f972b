// Package webpush sends Web Push messages to browser endpoints using
// VAPID authentication. It is the delivery transport behind the
// dispatch engine.
package webpush

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/faithbridge/notify/internal/model"
)

// ErrEndpointGone marks a permanent delivery failure: the push service
// reported the endpoint no longer exists (404/410). The subscription
// must be invalidated and never retried.
var ErrEndpointGone = errors.New("push endpoint gone")

// Client sends push messages signed with a VAPID key pair.
type Client struct {
	subscriber      string // contact address sent to the push service
	vapidPublicKey  string
	vapidPrivateKey string
	ttl             int // seconds the push service may hold the message
}

// NewClient creates a new push client. subscriber is the operator
// contact address required by the VAPID spec (webpush-go prepends
// mailto: itself).
func NewClient(subscriber, vapidPublicKey, vapidPrivateKey string, ttl int) *Client {
	return &Client{
		subscriber:      subscriber,
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		ttl:             ttl,
	}
}

// Send delivers one encrypted message to one subscription endpoint.
// A 404/410 response is reported as ErrEndpointGone; any other non-2xx
// response or transport error is a transient failure.
func (c *Client) Send(ctx context.Context, sub model.Subscription, body []byte) error {
	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, s, &webpush.Options{
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.vapidPublicKey,
		VAPIDPrivateKey: c.vapidPrivateKey,
		TTL:             c.ttl,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("push service returned %s: %w", resp.Status, ErrEndpointGone)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("push service error: %s", resp.Status)
	}

	return nil
}
