package subscription

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/faithbridge/notify/internal/model"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Repository provides methods to interact with the subscriptions table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new subscription repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Register upserts a subscription keyed by endpoint. Re-registering an
// existing endpoint overwrites its keys, recipient and snapshot, never
// duplicates the record.
func (r *Repository) Register(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	var snapshot []byte
	if sub.Preferences != nil {
		var err error
		snapshot, err = json.Marshal(sub.Preferences)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("failed to marshal preferences snapshot: %w", err)
		}
	}

	query := `
		INSERT INTO subscriptions (
		    endpoint, p256dh, auth, recipient_id, user_agent, preferences
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (endpoint) DO UPDATE SET
		    p256dh = EXCLUDED.p256dh,
		    auth = EXCLUDED.auth,
		    recipient_id = EXCLUDED.recipient_id,
		    user_agent = EXCLUDED.user_agent,
		    preferences = EXCLUDED.preferences,
		    updated_at = now()
		RETURNING created_at, updated_at;
    `

	err := r.db.QueryRowContext(
		ctx, query, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, sub.RecipientID, sub.UserAgent, snapshot,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("failed to register subscription: %w", err)
	}

	return sub, nil
}

// Unregister removes a subscription by endpoint. Idempotent: it reports
// whether a record existed.
func (r *Repository) Unregister(ctx context.Context, endpoint string) (bool, error) {
	query := `
		DELETE FROM subscriptions
		WHERE endpoint = $1;
    `

	res, err := r.db.ExecContext(ctx, query, endpoint)
	if err != nil {
		return false, fmt.Errorf("failed to unregister subscription: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows > 0, nil
}

// ListFor retrieves all subscriptions registered for one recipient.
func (r *Repository) ListFor(ctx context.Context, recipientID string) ([]model.Subscription, error) {
	query := `
		SELECT endpoint, p256dh, auth, recipient_id, user_agent, preferences, created_at, updated_at
		FROM subscriptions
		WHERE recipient_id = $1
		ORDER BY created_at;
    `

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// ListAll retrieves every registered subscription. Only broadcast
// dispatches may call this; it is never the default target.
func (r *Repository) ListAll(ctx context.Context) ([]model.Subscription, error) {
	query := `
		SELECT endpoint, p256dh, auth, recipient_id, user_agent, preferences, created_at, updated_at
		FROM subscriptions
		ORDER BY recipient_id, created_at;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// Invalidate removes a permanently dead endpoint. Removing an endpoint
// that is already gone is a harmless no-op.
func (r *Repository) Invalidate(ctx context.Context, endpoint string) error {
	query := `
		DELETE FROM subscriptions
		WHERE endpoint = $1;
    `

	if _, err := r.db.ExecContext(ctx, query, endpoint); err != nil {
		return fmt.Errorf("failed to invalidate subscription: %w", err)
	}

	return nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	var subs []model.Subscription
	for rows.Next() {
		var (
			s        model.Subscription
			snapshot []byte
		)
		if err := rows.Scan(
			&s.Endpoint, &s.Keys.P256dh, &s.Keys.Auth, &s.RecipientID, &s.UserAgent, &snapshot, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if len(snapshot) > 0 {
			var prefs model.Preferences
			if err := json.Unmarshal(snapshot, &prefs); err == nil {
				s.Preferences = &prefs
			}
		}

		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}

	return subs, nil
}
