package domain

import "time"

// Ride is the core domain entity: a published trip with a capacity.
// seatsAvailable is mutated only through the request lifecycle transactions;
// it never drops below zero.
type Ride struct {
	id                string
	ownerID           string
	ownerName         string
	route             string
	scheduledAt       time.Time
	seatsAvailable    int
	carNumber         string
	carModel          string
	startLocationName string
	endLocationName   string
	startLatitude     float64
	startLongitude    float64
	createdAt         time.Time
}

// RideAttributes is the caller-supplied input for creating a ride.
type RideAttributes struct {
	OwnerName         string
	Route             string
	ScheduledAt       time.Time
	SeatsAvailable    int
	CarNumber         string
	CarModel          string
	StartLocationName string
	EndLocationName   string
	StartLatitude     float64
	StartLongitude    float64
}

// NewRide creates a ride owned by ownerID. A negative seat count is clamped
// to zero rather than rejected.
func NewRide(id, ownerID string, attrs RideAttributes) *Ride {
	seats := attrs.SeatsAvailable
	if seats < 0 {
		seats = 0
	}

	return &Ride{
		id:                id,
		ownerID:           ownerID,
		ownerName:         attrs.OwnerName,
		route:             attrs.Route,
		scheduledAt:       attrs.ScheduledAt,
		seatsAvailable:    seats,
		carNumber:         attrs.CarNumber,
		carModel:          attrs.CarModel,
		startLocationName: attrs.StartLocationName,
		endLocationName:   attrs.EndLocationName,
		startLatitude:     attrs.StartLatitude,
		startLongitude:    attrs.StartLongitude,
		createdAt:         time.Now().UTC(),
	}
}

// ReconstructRide reconstructs a ride from persistence (used by repository).
func ReconstructRide(
	id string,
	ownerID string,
	ownerName string,
	route string,
	scheduledAt time.Time,
	seatsAvailable int,
	carNumber string,
	carModel string,
	startLocationName string,
	endLocationName string,
	startLatitude float64,
	startLongitude float64,
	createdAt time.Time,
) *Ride {
	return &Ride{
		id:                id,
		ownerID:           ownerID,
		ownerName:         ownerName,
		route:             route,
		scheduledAt:       scheduledAt,
		seatsAvailable:    seatsAvailable,
		carNumber:         carNumber,
		carModel:          carModel,
		startLocationName: startLocationName,
		endLocationName:   endLocationName,
		startLatitude:     startLatitude,
		startLongitude:    startLongitude,
		createdAt:         createdAt,
	}
}

// IsOwnedBy reports whether userID owns this ride.
func (r *Ride) IsOwnedBy(userID string) bool {
	return userID != "" && r.ownerID == userID
}

// HasSeats reports whether at least one seat remains.
func (r *Ride) HasSeats() bool {
	return r.seatsAvailable > 0
}

// Getters

func (r *Ride) ID() string                { return r.id }
func (r *Ride) OwnerID() string           { return r.ownerID }
func (r *Ride) OwnerName() string         { return r.ownerName }
func (r *Ride) Route() string             { return r.route }
func (r *Ride) ScheduledAt() time.Time    { return r.scheduledAt }
func (r *Ride) SeatsAvailable() int       { return r.seatsAvailable }
func (r *Ride) CarNumber() string         { return r.carNumber }
func (r *Ride) CarModel() string          { return r.carModel }
func (r *Ride) StartLocationName() string { return r.startLocationName }
func (r *Ride) EndLocationName() string   { return r.endLocationName }
func (r *Ride) StartLatitude() float64    { return r.startLatitude }
func (r *Ride) StartLongitude() float64   { return r.startLongitude }
func (r *Ride) CreatedAt() time.Time      { return r.createdAt }
