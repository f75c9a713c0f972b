// Package inmemory holds in-memory implementations of the three stores.
// Each instance owns its data, so tests can run against isolated stores
// and small deployments can run without Postgres.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/faithbridge/notify/internal/model"
	"github.com/faithbridge/notify/internal/repository/delivery"
	"github.com/faithbridge/notify/internal/repository/preference"
)

// SubscriptionStore is a mutex-guarded subscription registry keyed by
// endpoint.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]model.Subscription
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subs: make(map[string]model.Subscription)}
}

func (s *SubscriptionStore) Register(_ context.Context, sub model.Subscription) (model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if prev, ok := s.subs[sub.Endpoint]; ok {
		sub.CreatedAt = prev.CreatedAt
	} else {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	s.subs[sub.Endpoint] = sub
	return sub, nil
}

func (s *SubscriptionStore) Unregister(_ context.Context, endpoint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.subs[endpoint]
	delete(s.subs, endpoint)
	return ok, nil
}

func (s *SubscriptionStore) ListFor(_ context.Context, recipientID string) ([]model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Subscription
	for _, sub := range s.subs {
		if sub.RecipientID == recipientID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *SubscriptionStore) ListAll(_ context.Context) ([]model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out, nil
}

// Invalidate removes an endpoint. Safe under concurrent invocation;
// invalidating an already-removed endpoint is a no-op.
func (s *SubscriptionStore) Invalidate(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	return nil
}

// Len reports the number of registered subscriptions.
func (s *SubscriptionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.subs)
}

// PreferenceStore is a mutex-guarded preferences map keyed by recipient.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]model.Preferences
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]model.Preferences)}
}

func (s *PreferenceStore) Get(_ context.Context, recipientID string) (model.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[recipientID]
	if !ok {
		return model.Preferences{}, preference.ErrPreferencesNotFound
	}
	return p, nil
}

func (s *PreferenceStore) Upsert(_ context.Context, recipientID string, prefs model.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[recipientID] = prefs
	return nil
}

// DeliveryLog is a mutex-guarded append-only log of delivery attempts
// and engagement events.
type DeliveryLog struct {
	mu       sync.Mutex
	attempts []model.DeliveryAttempt
	events   []model.EngagementEvent
}

func NewDeliveryLog() *DeliveryLog {
	return &DeliveryLog{}
}

func (l *DeliveryLog) AppendAttempt(_ context.Context, attempt model.DeliveryAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts = append(l.attempts, attempt)
	return nil
}

func (l *DeliveryLog) AppendEvent(_ context.Context, event model.EngagementEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	return nil
}

func (l *DeliveryLog) CountSentNotifications(_ context.Context, recipientID string, since time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{})
	for _, a := range l.attempts {
		if a.RecipientID == recipientID && a.Status == model.StatusSent && !a.CreatedAt.Before(since) {
			seen[a.NotificationID.String()] = struct{}{}
		}
	}
	return len(seen), nil
}

func (l *DeliveryLog) ListEvents(_ context.Context, filter delivery.EventFilter) ([]model.EngagementEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.EngagementEvent
	for _, e := range l.events {
		if e.CreatedAt.Before(filter.From) || !e.CreatedAt.Before(filter.To) {
			continue
		}
		if filter.RecipientID != "" && e.RecipientID != filter.RecipientID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Attempts returns a copy of all recorded delivery attempts.
func (l *DeliveryLog) Attempts() []model.DeliveryAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]model.DeliveryAttempt(nil), l.attempts...)
}

// Events returns a copy of all recorded engagement events.
func (l *DeliveryLog) Events() []model.EngagementEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]model.EngagementEvent(nil), l.events...)
}
