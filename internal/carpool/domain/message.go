package domain

import "time"

// Message is an immutable chat message scoped to a ride. Messages are never
// updated or deleted; viewers may simply not see them after filtering.
type Message struct {
	ID         string    `json:"id"`
	RideID     string    `json:"ride_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsWellFormed reports whether the record carries every field the feed
// requires. Schema-less writes can persist partial records; those are
// dropped during projection rather than surfaced as errors.
func (m Message) IsWellFormed() bool {
	return m.SenderID != "" && m.SenderName != "" && m.Text != ""
}
