package domain

import "time"

// Flag represents a named boolean toggle with versioned state.
type Flag struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FlagPatch carries the fields of a partial flag update. A nil field means
// the caller did not supply a value and the stored value is kept; this
// distinguishes "leave unchanged" from "clear".
type FlagPatch struct {
	Description *string
	Enabled     *bool
}

// IsEmpty reports whether the patch carries no fields at all.
func (p FlagPatch) IsEmpty() bool {
	return p.Description == nil && p.Enabled == nil
}

// Decision is the result of evaluating a flag for a user. It is ephemeral:
// decisions are logged, never persisted as entities.
type Decision struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Version int    `json:"version"`
	Reason  string `json:"reason"`
}
