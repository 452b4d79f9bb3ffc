package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-pool/internal/carpool/domain"
)

// PostgresRideRepository implements domain.RideRepository.
type PostgresRideRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRideRepository(db *pgxpool.Pool) *PostgresRideRepository {
	return &PostgresRideRepository{db: db}
}

// Save persists a new ride.
func (r *PostgresRideRepository) Save(ctx context.Context, ride *domain.Ride) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rides (
			id, owner_id, owner_name, route, scheduled_at, seats_available,
			car_number, car_model, start_location_name, end_location_name,
			start_latitude, start_longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		ride.ID(),
		ride.OwnerID(),
		ride.OwnerName(),
		ride.Route(),
		ride.ScheduledAt(),
		ride.SeatsAvailable(),
		ride.CarNumber(),
		ride.CarModel(),
		ride.StartLocationName(),
		ride.EndLocationName(),
		ride.StartLatitude(),
		ride.StartLongitude(),
		ride.CreatedAt(),
	)
	if err != nil {
		return storeError("insert ride", err)
	}
	return nil
}

// FindByID retrieves a ride by its ID.
func (r *PostgresRideRepository) FindByID(ctx context.Context, rideID string) (*domain.Ride, error) {
	row := r.db.QueryRow(ctx, `
		SELECT
			id, owner_id, COALESCE(owner_name, ''), COALESCE(route, ''),
			scheduled_at, seats_available,
			COALESCE(car_number, ''), COALESCE(car_model, ''),
			COALESCE(start_location_name, ''), COALESCE(end_location_name, ''),
			COALESCE(start_latitude, 0), COALESCE(start_longitude, 0),
			created_at
		FROM rides
		WHERE id = $1
	`, rideID)

	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("query ride", err)
	}
	return ride, nil
}

// List returns all rides ordered by scheduled time ascending. Rows missing
// required fields are dropped rather than aborting the whole listing.
func (r *PostgresRideRepository) List(ctx context.Context) ([]*domain.Ride, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id, owner_id, COALESCE(owner_name, ''), COALESCE(route, ''),
			scheduled_at, seats_available,
			COALESCE(car_number, ''), COALESCE(car_model, ''),
			COALESCE(start_location_name, ''), COALESCE(end_location_name, ''),
			COALESCE(start_latitude, 0), COALESCE(start_longitude, 0),
			created_at
		FROM rides
		ORDER BY scheduled_at ASC
	`)
	if err != nil {
		return nil, storeError("query rides", err)
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			continue
		}
		if ride.OwnerID() == "" || ride.Route() == "" {
			continue
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate rides", err)
	}
	return rides, nil
}

// Delete removes the ride together with its requests and messages as one
// all-or-nothing unit, so no request can outlive its ride.
func (r *PostgresRideRepository) Delete(ctx context.Context, rideID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE ride_id = $1`, rideID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM ride_requests WHERE ride_id = $1`, rideID); err != nil {
		return fmt.Errorf("delete requests: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM rides WHERE id = $1`, rideID)
	if err != nil {
		return fmt.Errorf("delete ride: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var (
		id, ownerID, ownerName, route  string
		carNumber, carModel            string
		startLocationName, endLocation string
		scheduledAt, createdAt         time.Time
		seatsAvailable                 int
		startLatitude, startLongitude  float64
	)

	err := row.Scan(
		&id, &ownerID, &ownerName, &route,
		&scheduledAt, &seatsAvailable,
		&carNumber, &carModel,
		&startLocationName, &endLocation,
		&startLatitude, &startLongitude,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	return domain.ReconstructRide(
		id, ownerID, ownerName, route, scheduledAt, seatsAvailable,
		carNumber, carModel, startLocationName, endLocation,
		startLatitude, startLongitude, createdAt,
	), nil
}
