package service

import (
	"context"
	"errors"
	"fmt"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
	"ride-pool/pkg/uuid"
)

// RequestDTO is the outward representation of a join request.
type RequestDTO struct {
	ID            string `json:"id"`
	RideID        string `json:"ride_id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name,omitempty"`
	Status        string `json:"status"`
}

// Lifecycle owns the join request state machine and the seat-count
// invariant. The state machine is none -> pending -> approved; withdrawal
// and removal delete the record from either state.
type Lifecycle struct {
	rides    domain.RideRepository
	requests domain.RequestRepository
	log      logger.Logger
}

func NewLifecycle(rides domain.RideRepository, requests domain.RequestRepository, log logger.Logger) *Lifecycle {
	return &Lifecycle{rides: rides, requests: requests, log: log}
}

// RequestToJoin files a pending request by the caller. There is no seat
// check at this step: seats are reserved only at approval, so pending
// requests may outnumber available seats.
func (l *Lifecycle) RequestToJoin(ctx context.Context, callerID, rideID string) (*RequestDTO, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	if _, err := l.rides.FindByID(ctx, rideID); err != nil {
		return nil, err
	}

	req := domain.NewRequest(uuid.NewString(), rideID, callerID)
	if err := l.requests.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("create request: %w", err)
	}

	l.log.WithFields(logger.LogFields{"ride_id": rideID, "request_id": req.ID()}).
		Info("request_created", "Join request filed")

	dto := requestToDTO(req)
	return &dto, nil
}

// Approve reserves a seat for the request. Owner only. The seat check,
// decrement and status change execute as one atomic unit: of two approvals
// racing for the last seat, exactly one succeeds and the other fails with
// ErrNoSeatsAvailable, leaving the count untouched.
func (l *Lifecycle) Approve(ctx context.Context, callerID, rideID, requestID string) error {
	ride, err := l.ownedRide(ctx, callerID, rideID)
	if err != nil {
		return err
	}

	if err := l.requests.Approve(ctx, ride.ID(), requestID); err != nil {
		return err
	}

	l.log.WithFields(logger.LogFields{"ride_id": rideID, "request_id": requestID}).
		Info("request_approved", "Seat reserved")
	return nil
}

// Withdraw deletes the request, releasing its seat iff it was approved.
// The requester withdraws their own request; the owner may remove anyone's.
func (l *Lifecycle) Withdraw(ctx context.Context, callerID, rideID, requestID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}

	ride, err := l.rides.FindByID(ctx, rideID)
	if err != nil {
		return err
	}
	req, err := l.requests.FindByID(ctx, rideID, requestID)
	if err != nil {
		return err
	}
	if req.RequesterID() != callerID && !ride.IsOwnedBy(callerID) {
		return domain.ErrNotOwner
	}

	if err := l.requests.Withdraw(ctx, rideID, requestID); err != nil {
		return err
	}

	l.log.WithFields(logger.LogFields{"ride_id": rideID, "request_id": requestID}).
		Info("request_withdrawn", "Request removed")
	return nil
}

// ListRequests returns all requests for a ride with requester names.
// Owner only.
func (l *Lifecycle) ListRequests(ctx context.Context, callerID, rideID string) ([]RequestDTO, error) {
	if _, err := l.ownedRide(ctx, callerID, rideID); err != nil {
		return nil, err
	}

	reqs, err := l.requests.FindByRide(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	dtos := make([]RequestDTO, 0, len(reqs))
	for _, r := range reqs {
		dtos = append(dtos, requestToDTO(r))
	}
	return dtos, nil
}

// FetchOwnRequest returns the caller's request for the ride, or
// ErrNotFound when none exists.
func (l *Lifecycle) FetchOwnRequest(ctx context.Context, callerID, rideID string) (*RequestDTO, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	req, err := l.requests.FindByRequester(ctx, rideID, callerID)
	if err != nil {
		return nil, err
	}

	dto := requestToDTO(req)
	return &dto, nil
}

func (l *Lifecycle) ownedRide(ctx context.Context, callerID, rideID string) (*domain.Ride, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ride, err := l.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.IsOwnedBy(callerID) {
		return nil, domain.ErrNotOwner
	}
	return ride, nil
}

func requestToDTO(r *domain.Request) RequestDTO {
	return RequestDTO{
		ID:            r.ID(),
		RideID:        r.RideID(),
		RequesterID:   r.RequesterID(),
		RequesterName: r.RequesterName(),
		Status:        r.Status().String(),
	}
}
