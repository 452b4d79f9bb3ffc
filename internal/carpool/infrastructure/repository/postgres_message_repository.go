package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ride-pool/internal/carpool/domain"
)

// PostgresMessageRepository implements domain.MessageRepository and serves
// as the feed projector's MessageSource.
type PostgresMessageRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMessageRepository(db *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Save persists a message. created_at is assigned by the database so
// ordering within a ride follows commit order.
func (r *PostgresMessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (id, ride_id, sender_id, sender_name, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`,
		msg.ID,
		msg.RideID,
		msg.SenderID,
		msg.SenderName,
		msg.Text,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return storeError("insert message", err)
	}
	return nil
}

// ListByRide returns the ride's full message set ordered by creation time
// ascending. Malformed rows are returned as-is; the projector decides what
// a viewer gets to see.
func (r *PostgresMessageRepository) ListByRide(ctx context.Context, rideID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ride_id, COALESCE(sender_id, ''), COALESCE(sender_name, ''),
		       COALESCE(text, ''), created_at
		FROM messages
		WHERE ride_id = $1
		ORDER BY created_at ASC, id ASC
	`, rideID)
	if err != nil {
		return nil, storeError("query messages", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RideID, &m.SenderID, &m.SenderName, &m.Text, &m.CreatedAt); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate messages", err)
	}
	return msgs, nil
}
