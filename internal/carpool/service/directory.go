package service

import (
	"context"
	"fmt"
	"time"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
	"ride-pool/pkg/uuid"
)

// RideDTO is the outward representation of a ride.
type RideDTO struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	OwnerName         string    `json:"owner_name"`
	Route             string    `json:"route"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	SeatsAvailable    int       `json:"seats_available"`
	CarNumber         string    `json:"car_number"`
	CarModel          string    `json:"car_model"`
	StartLocationName string    `json:"start_location_name"`
	EndLocationName   string    `json:"end_location_name"`
	StartLatitude     float64   `json:"start_latitude"`
	StartLongitude    float64   `json:"start_longitude"`
}

// Directory publishes and lists rides and owns ride deletion.
type Directory struct {
	rides domain.RideRepository
	log   logger.Logger
}

func NewDirectory(rides domain.RideRepository, log logger.Logger) *Directory {
	return &Directory{rides: rides, log: log}
}

// CreateRide publishes a new ride owned by the caller. A negative seat
// count is clamped to zero, not rejected.
func (d *Directory) CreateRide(ctx context.Context, callerID string, attrs domain.RideAttributes) (*RideDTO, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	ride := domain.NewRide(uuid.NewString(), callerID, attrs)
	if err := d.rides.Save(ctx, ride); err != nil {
		return nil, fmt.Errorf("save ride: %w", err)
	}

	d.log.WithFields(logger.LogFields{"ride_id": ride.ID()}).
		Info("ride_created", "Ride published")

	dto := rideToDTO(ride)
	return &dto, nil
}

// ListRides returns all rides ordered by scheduled time ascending.
func (d *Directory) ListRides(ctx context.Context) ([]RideDTO, error) {
	rides, err := d.rides.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}

	dtos := make([]RideDTO, 0, len(rides))
	for _, r := range rides {
		dtos = append(dtos, rideToDTO(r))
	}
	return dtos, nil
}

// DeleteRide removes a ride and everything scoped to it. Owner only.
func (d *Directory) DeleteRide(ctx context.Context, callerID, rideID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}

	ride, err := d.rides.FindByID(ctx, rideID)
	if err != nil {
		return err
	}
	if !ride.IsOwnedBy(callerID) {
		return domain.ErrNotOwner
	}

	if err := d.rides.Delete(ctx, rideID); err != nil {
		return fmt.Errorf("delete ride: %w", err)
	}

	d.log.WithFields(logger.LogFields{"ride_id": rideID}).
		Info("ride_deleted", "Ride and its requests removed")
	return nil
}

func rideToDTO(r *domain.Ride) RideDTO {
	return RideDTO{
		ID:                r.ID(),
		OwnerID:           r.OwnerID(),
		OwnerName:         r.OwnerName(),
		Route:             r.Route(),
		ScheduledAt:       r.ScheduledAt(),
		SeatsAvailable:    r.SeatsAvailable(),
		CarNumber:         r.CarNumber(),
		CarModel:          r.CarModel(),
		StartLocationName: r.StartLocationName(),
		EndLocationName:   r.EndLocationName(),
		StartLatitude:     r.StartLatitude(),
		StartLongitude:    r.StartLongitude(),
	}
}
