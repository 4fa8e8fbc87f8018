package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orcavox/internal/domain"
	"orcavox/internal/port"
)

type preferenceRepo struct {
	db *sqlx.DB
}

// NewPreferenceRepo creates a new PostgreSQL-backed PreferenceStore.
func NewPreferenceRepo(db *sqlx.DB) port.PreferenceStore {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) Save(ctx context.Context, prefs *domain.ClientPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()

	query := `INSERT INTO client_preferences (client_id, preferences, patterns, confidence, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			patterns    = EXCLUDED.patterns,
			confidence  = EXCLUDED.confidence,
			updated_at  = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		prefs.ClientID, prefs.Preferences, prefs.Patterns, prefs.Confidence, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("preferenceRepo.Save: %w", err)
	}
	return nil
}

func (r *preferenceRepo) Get(ctx context.Context, clientID string) (*domain.ClientPreferences, error) {
	var prefs domain.ClientPreferences
	err := r.db.GetContext(ctx, &prefs,
		"SELECT * FROM client_preferences WHERE client_id = $1", clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("preferenceRepo.Get: %w", err)
	}
	return &prefs, nil
}
