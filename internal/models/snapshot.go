package models

import "time"

// Snapshot is a persisted copy of the transcript plus the current profile id,
// restorable later. Records are keyed by an opaque unique id and listed
// most-recent-first.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProfileID string    `json:"profile_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}
