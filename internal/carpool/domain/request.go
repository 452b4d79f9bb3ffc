package domain

import "fmt"

// RequestStatus is the closed set of join request states. Withdrawal and
// removal delete the record instead of transitioning to a terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
)

func (s RequestStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved:
		return true
	}
	return false
}

// ParseRequestStatus converts a stored string into a RequestStatus,
// rejecting anything outside the closed set.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	s := RequestStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown request status %q", raw)
	}
	return s, nil
}

// Request is a rider's ask to join a ride. At most one request exists per
// (ride, requester) pair.
type Request struct {
	id            string
	rideID        string
	requesterID   string
	requesterName string
	status        RequestStatus
}

// NewRequest creates a pending request for rideID by requesterID.
func NewRequest(id, rideID, requesterID string) *Request {
	return &Request{
		id:          id,
		rideID:      rideID,
		requesterID: requesterID,
		status:      StatusPending,
	}
}

// ReconstructRequest rebuilds a request from persistence. requesterName may
// be empty when the owning user record was not resolved.
func ReconstructRequest(id, rideID, requesterID, requesterName string, status RequestStatus) *Request {
	return &Request{
		id:            id,
		rideID:        rideID,
		requesterID:   requesterID,
		requesterName: requesterName,
		status:        status,
	}
}

// IsApproved reports whether the request holds a reserved seat.
func (r *Request) IsApproved() bool {
	return r.status == StatusApproved
}

// Getters

func (r *Request) ID() string            { return r.id }
func (r *Request) RideID() string        { return r.rideID }
func (r *Request) RequesterID() string   { return r.requesterID }
func (r *Request) RequesterName() string { return r.requesterName }
func (r *Request) Status() RequestStatus { return r.status }
