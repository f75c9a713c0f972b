package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"

	"github.com/faithbridge/notify/internal/model"
)

// EventFilter narrows an engagement event query. Zero values mean "no
// constraint" except the window bounds, which are always applied.
type EventFilter struct {
	RecipientID string
	Category    model.Category
	From        time.Time
	To          time.Time
}

// Repository provides append-only access to delivery attempts and
// engagement events. Nothing here ever updates or deletes a row.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new delivery log repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// AppendAttempt records one delivery attempt outcome.
func (r *Repository) AppendAttempt(ctx context.Context, attempt model.DeliveryAttempt) error {
	query := `
		INSERT INTO delivery_attempts (
		    id, notification_id, endpoint, recipient_id, category, status, error_detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `

	_, err := r.db.ExecContext(
		ctx, query,
		attempt.ID, attempt.NotificationID, attempt.Endpoint, attempt.RecipientID,
		attempt.Category, attempt.Status, attempt.ErrorDetail, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append delivery attempt: %w", err)
	}

	return nil
}

// AppendEvent records one engagement event.
func (r *Repository) AppendEvent(ctx context.Context, event model.EngagementEvent) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
	}

	query := `
		INSERT INTO engagement_events (
		    id, recipient_id, notification_id, category, action, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7);
    `

	_, err := r.db.ExecContext(
		ctx, query,
		event.ID, event.RecipientID, event.NotificationID, event.Category,
		event.Action, metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append engagement event: %w", err)
	}

	return nil
}

// CountSentNotifications counts the distinct notifications delivered to
// a recipient since the given time. Distinct notification ids, not
// attempts: a recipient with several devices consumes one unit of the
// daily cap per notification.
func (r *Repository) CountSentNotifications(ctx context.Context, recipientID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT notification_id)
		FROM delivery_attempts
		WHERE recipient_id = $1
		  AND status = $2
		  AND created_at >= $3;
    `

	var count int
	err := r.db.QueryRowContext(ctx, query, recipientID, model.StatusSent, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sent notifications: %w", err)
	}

	return count, nil
}

// ListEvents retrieves engagement events matching the filter, ordered
// by time.
func (r *Repository) ListEvents(ctx context.Context, filter EventFilter) ([]model.EngagementEvent, error) {
	query := `
		SELECT id, recipient_id, notification_id, category, action, metadata, created_at
		FROM engagement_events
		WHERE created_at >= $1
		  AND created_at < $2
		  AND ($3 = '' OR recipient_id = $3)
		  AND ($4 = '' OR category = $4)
		ORDER BY created_at;
    `

	rows, err := r.db.QueryContext(ctx, query, filter.From, filter.To, filter.RecipientID, string(filter.Category))
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement events: %w", err)
	}
	defer rows.Close()

	var events []model.EngagementEvent
	for rows.Next() {
		var (
			e        model.EngagementEvent
			metadata []byte
		)
		if err := rows.Scan(
			&e.ID, &e.RecipientID, &e.NotificationID, &e.Category, &e.Action, &metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &e.Metadata)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read engagement events: %w", err)
	}

	return events, nil
}
