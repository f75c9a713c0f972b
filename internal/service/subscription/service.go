package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/faithbridge/notify/internal/model"
)

// Validation errors for the subscription lifecycle.
var (
	ErrMissingEndpoint  = errors.New("endpoint is required")
	ErrMissingKeys      = errors.New("both p256dh and auth keys are required")
	ErrMissingRecipient = errors.New("recipient id is required")
)

type subscriptionRepo interface {
	Register(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	Unregister(ctx context.Context, endpoint string) (bool, error)
	ListFor(ctx context.Context, recipientID string) ([]model.Subscription, error)
}

// Service manages the subscription lifecycle for client-facing routes.
type Service struct {
	repo subscriptionRepo
}

func NewService(repo subscriptionRepo) *Service {
	return &Service{repo: repo}
}

// Register validates and upserts one device subscription. Re-registering
// an existing endpoint overwrites it.
func (s *Service) Register(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	if sub.Endpoint == "" {
		return model.Subscription{}, ErrMissingEndpoint
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return model.Subscription{}, ErrMissingKeys
	}
	if sub.RecipientID == "" {
		return model.Subscription{}, ErrMissingRecipient
	}

	registered, err := s.repo.Register(ctx, sub)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("register subscription: %w", err)
	}

	return registered, nil
}

// Unregister removes a subscription by endpoint and reports whether it
// existed. Idempotent.
func (s *Service) Unregister(ctx context.Context, endpoint string) (bool, error) {
	if endpoint == "" {
		return false, ErrMissingEndpoint
	}

	existed, err := s.repo.Unregister(ctx, endpoint)
	if err != nil {
		return false, fmt.Errorf("unregister subscription: %w", err)
	}

	return existed, nil
}

// ListFor returns a recipient's registered subscriptions.
func (s *Service) ListFor(ctx context.Context, recipientID string) ([]model.Subscription, error) {
	if recipientID == "" {
		return nil, ErrMissingRecipient
	}

	subs, err := s.repo.ListFor(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}
