package domain

import (
	"encoding/json"
	"time"
)

// Event is a client-reported audit record of a flag decision made elsewhere.
// Events are append-only: there is no update or delete.
type Event struct {
	ID       string          `json:"id"`
	TS       time.Time       `json:"ts"`
	Caller   string          `json:"caller"`
	FlagKey  string          `json:"flag_key"`
	Decision bool            `json:"decision"`
	UserID   string          `json:"user_id,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
