package model

import "time"

// Keys is the credential bundle required to deliver to a push endpoint.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one registered delivery endpoint for a recipient. The
// endpoint value is globally unique: re-registering the same endpoint
// overwrites the prior record.
type Subscription struct {
	Endpoint    string       `json:"endpoint"`
	Keys        Keys         `json:"keys"`
	RecipientID string       `json:"recipient_id"`
	UserAgent   string       `json:"user_agent,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"` // cached snapshot, may be stale
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
