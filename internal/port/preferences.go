package port

import (
	"context"

	"orcavox/internal/domain"
)

// PreferenceStore persists learned client preferences delivered by
// memory_update responses, keyed by client identifier.
type PreferenceStore interface {
	Save(ctx context.Context, prefs *domain.ClientPreferences) error
	Get(ctx context.Context, clientID string) (*domain.ClientPreferences, error)
}
