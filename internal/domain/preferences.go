package domain

import (
	"encoding/json"
	"time"
)

// ClientPreferences is the durable record built from memory_update
// responses. Preferences and Patterns stay raw: their shape belongs to
// the conversational model, not to us.
type ClientPreferences struct {
	ClientID    string          `db:"client_id" json:"cliente_id"`
	Preferences json.RawMessage `db:"preferences" json:"preferencias"`
	Patterns    json.RawMessage `db:"patterns" json:"padroes"`
	Confidence  string          `db:"confidence" json:"confiança"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
