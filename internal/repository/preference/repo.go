package preference

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/faithbridge/notify/internal/model"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// Repository provides methods to interact with the preferences table.
// One row per recipient, the full record stored as jsonb.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new preference repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves the stored preferences for a recipient. Returns
// ErrPreferencesNotFound when the recipient has never saved any; the
// service layer substitutes the default record in that case.
func (r *Repository) Get(ctx context.Context, recipientID string) (model.Preferences, error) {
	query := `
		SELECT prefs
		FROM preferences
		WHERE recipient_id = $1;
    `

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preferences{}, ErrPreferencesNotFound
		}

		return model.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs model.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return model.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	return prefs, nil
}

// Upsert stores the full preferences record for a recipient.
func (r *Repository) Upsert(ctx context.Context, recipientID string, prefs model.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (recipient_id, prefs)
		VALUES ($1, $2)
		ON CONFLICT (recipient_id) DO UPDATE SET
		    prefs = EXCLUDED.prefs,
		    updated_at = now();
    `

	if _, err := r.db.ExecContext(ctx, query, recipientID, raw); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}
