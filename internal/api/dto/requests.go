package dto

import "github.com/faithbridge/notify/internal/model"

// SubscribeRequest registers one device push subscription.
type SubscribeRequest struct {
	Endpoint    string             `json:"endpoint" validate:"required,url"`
	Keys        SubscriptionKeys   `json:"keys" validate:"required"`
	RecipientID string             `json:"recipient_id" validate:"required"`
	UserAgent   string             `json:"user_agent"`
	Preferences *model.Preferences `json:"preferences"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// UnsubscribeRequest removes one subscription by endpoint.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// DispatchRequest triggers one dispatch cycle.
type DispatchRequest struct {
	RecipientID string        `json:"recipient_id"`
	Broadcast   bool          `json:"broadcast"`
	Category    string        `json:"category" validate:"required"`
	Payload     model.Payload `json:"payload" validate:"required"`
}

// EngagementRequest reports a recipient's interaction with a delivered
// notification (posted by the service worker).
type EngagementRequest struct {
	RecipientID    string            `json:"recipient_id" validate:"required"`
	NotificationID string            `json:"notification_id" validate:"required,uuid"`
	Category       string            `json:"category" validate:"required"`
	Action         string            `json:"action" validate:"required,oneof=click close dismiss"`
	Metadata       map[string]string `json:"metadata"`
}
