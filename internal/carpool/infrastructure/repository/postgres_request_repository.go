package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-pool/internal/carpool/domain"
)

const uniqueViolation = "23505"

// PostgresRequestRepository implements domain.RequestRepository. Approve
// and Withdraw take row locks on the ride first and the request second,
// always in that order, so concurrent seat transactions against one ride
// serialize instead of deadlocking.
type PostgresRequestRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{db: db}
}

// Create persists a new pending request. The unique index on
// (ride_id, requester_id) enforces one request per requester per ride.
func (r *PostgresRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ride_requests (id, ride_id, requester_id, status)
		VALUES ($1, $2, $3, $4)
	`,
		req.ID(),
		req.RideID(),
		req.RequesterID(),
		req.Status().String(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateRequest
		}
		return storeError("insert request", err)
	}
	return nil
}

// FindByRide returns all requests for a ride, requester names resolved
// from the users table where known. Rows with a status outside the closed
// set are dropped, not surfaced.
func (r *PostgresRequestRepository) FindByRide(ctx context.Context, rideID string) ([]*domain.Request, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rr.id, rr.ride_id, rr.requester_id, COALESCE(u.name, ''), rr.status
		FROM ride_requests rr
		LEFT JOIN users u ON u.id = rr.requester_id
		WHERE rr.ride_id = $1
		ORDER BY rr.created_at ASC
	`, rideID)
	if err != nil {
		return nil, storeError("query requests", err)
	}
	defer rows.Close()

	var reqs []*domain.Request
	for rows.Next() {
		var id, reqRideID, requesterID, requesterName, rawStatus string
		if err := rows.Scan(&id, &reqRideID, &requesterID, &requesterName, &rawStatus); err != nil {
			continue
		}
		status, err := domain.ParseRequestStatus(rawStatus)
		if err != nil {
			continue
		}
		reqs = append(reqs, domain.ReconstructRequest(id, reqRideID, requesterID, requesterName, status))
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate requests", err)
	}
	return reqs, nil
}

// FindByRequester returns the requester's own request for the ride.
func (r *PostgresRequestRepository) FindByRequester(ctx context.Context, rideID, requesterID string) (*domain.Request, error) {
	return r.findOne(ctx, `
		SELECT rr.id, rr.ride_id, rr.requester_id, COALESCE(u.name, ''), rr.status
		FROM ride_requests rr
		LEFT JOIN users u ON u.id = rr.requester_id
		WHERE rr.ride_id = $1 AND rr.requester_id = $2
	`, rideID, requesterID)
}

// FindByID returns the request by id within the ride.
func (r *PostgresRequestRepository) FindByID(ctx context.Context, rideID, requestID string) (*domain.Request, error) {
	return r.findOne(ctx, `
		SELECT rr.id, rr.ride_id, rr.requester_id, COALESCE(u.name, ''), rr.status
		FROM ride_requests rr
		LEFT JOIN users u ON u.id = rr.requester_id
		WHERE rr.ride_id = $1 AND rr.id = $2
	`, rideID, requestID)
}

func (r *PostgresRequestRepository) findOne(ctx context.Context, sql string, args ...interface{}) (*domain.Request, error) {
	var id, rideID, requesterID, requesterName, rawStatus string
	err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &rideID, &requesterID, &requesterName, &rawStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("query request", err)
	}
	status, err := domain.ParseRequestStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", id, err)
	}
	return domain.ReconstructRequest(id, rideID, requesterID, requesterName, status), nil
}

// Approve reserves a seat: it reads the current seat count under a row
// lock, fails with ErrNoSeatsAvailable when none remain (no mutation), and
// otherwise decrements the count and marks the request approved in a single
// commit. Two approvals racing for the last seat serialize on the ride row;
// exactly one wins.
func (r *PostgresRequestRepository) Approve(ctx context.Context, rideID, requestID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var seats int
	err = tx.QueryRow(ctx, `
		SELECT seats_available FROM rides WHERE id = $1 FOR UPDATE
	`, rideID).Scan(&seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeError("lock ride", err)
	}

	var rawStatus string
	err = tx.QueryRow(ctx, `
		SELECT status FROM ride_requests WHERE id = $1 AND ride_id = $2 FOR UPDATE
	`, requestID, rideID).Scan(&rawStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeError("lock request", err)
	}

	// Already holding a seat: re-approving must not take a second one.
	if rawStatus == domain.StatusApproved.String() {
		return tx.Commit(ctx)
	}

	if seats <= 0 {
		return domain.ErrNoSeatsAvailable
	}

	if _, err := tx.Exec(ctx, `
		UPDATE rides SET seats_available = seats_available - 1 WHERE id = $1
	`, rideID); err != nil {
		return fmt.Errorf("decrement seats: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE ride_requests SET status = $1 WHERE id = $2
	`, domain.StatusApproved.String(), requestID); err != nil {
		return fmt.Errorf("approve request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

// Withdraw deletes the request and releases its seat iff it was approved,
// in the same atomic unit. Withdrawing a pending request leaves the seat
// count untouched.
func (r *PostgresRequestRepository) Withdraw(ctx context.Context, rideID, requestID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		SELECT id FROM rides WHERE id = $1 FOR UPDATE
	`, rideID); err != nil {
		return storeError("lock ride", err)
	}

	var rawStatus string
	err = tx.QueryRow(ctx, `
		SELECT status FROM ride_requests WHERE id = $1 AND ride_id = $2 FOR UPDATE
	`, requestID, rideID).Scan(&rawStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return storeError("lock request", err)
	}

	if rawStatus == domain.StatusApproved.String() {
		if _, err := tx.Exec(ctx, `
			UPDATE rides SET seats_available = seats_available + 1 WHERE id = $1
		`, rideID); err != nil {
			return fmt.Errorf("release seat: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM ride_requests WHERE id = $1
	`, requestID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}
