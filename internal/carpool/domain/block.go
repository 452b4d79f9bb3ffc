package domain

import "time"

// BlockEntry is a one-directional, advisory suppression: it hides the
// blocked sender's messages from the blocker only, independent of ride
// membership.
type BlockEntry struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
