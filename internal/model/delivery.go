package model

import (
	"time"

	"github.com/google/uuid"
)

// Delivery attempt statuses.
const (
	StatusSent            = "sent"
	StatusFailedTransient = "failed-transient"
	StatusFailedPermanent = "failed-permanent"
)

// DeliveryAttempt is one append-only outcome record for one endpoint.
type DeliveryAttempt struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	Endpoint       string    `json:"endpoint"`
	RecipientID    string    `json:"recipient_id"`
	Category       Category  `json:"category"`
	Status         string    `json:"status"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Engagement actions.
const (
	ActionSent    = "sent"
	ActionClick   = "click"
	ActionClose   = "close"
	ActionDismiss = "dismiss"
)

// EngagementEvent records a recipient's interaction with a delivered
// notification. Append-only; feeds the analytics aggregator.
type EngagementEvent struct {
	ID             uuid.UUID         `json:"id"`
	RecipientID    string            `json:"recipient_id"`
	NotificationID uuid.UUID         `json:"notification_id"`
	Category       Category          `json:"category"`
	Action         string            `json:"action"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
