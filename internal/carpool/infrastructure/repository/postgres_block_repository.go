package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ride-pool/internal/carpool/domain"
)

// PostgresBlockRepository implements domain.BlockRepository.
type PostgresBlockRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBlockRepository(db *pgxpool.Pool) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

// Save persists a block entry. Blocking an already-blocked user is a no-op.
func (r *PostgresBlockRepository) Save(ctx context.Context, entry domain.BlockEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blocked_users (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`,
		entry.BlockerID,
		entry.BlockedID,
		entry.CreatedAt,
	)
	if err != nil {
		return storeError("insert block", err)
	}
	return nil
}

// FetchBlocked returns the set of identities blocked by blockerID.
func (r *PostgresBlockRepository) FetchBlocked(ctx context.Context, blockerID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `
		SELECT blocked_id FROM blocked_users WHERE blocker_id = $1
	`, blockerID)
	if err != nil {
		return nil, storeError("query blocks", err)
	}
	defer rows.Close()

	blocked := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		blocked[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate blocks", err)
	}
	return blocked, nil
}
