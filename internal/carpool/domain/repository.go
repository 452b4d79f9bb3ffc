package domain

import "context"

// RideRepository is the port for ride persistence.
type RideRepository interface {
	// Save persists a new ride.
	Save(ctx context.Context, ride *Ride) error

	// FindByID retrieves a ride, or ErrNotFound.
	FindByID(ctx context.Context, rideID string) (*Ride, error)

	// List returns all rides ordered by scheduled time ascending. Rows that
	// fail required-field extraction are dropped, not surfaced.
	List(ctx context.Context) ([]*Ride, error)

	// Delete removes the ride together with its requests and messages in a
	// single all-or-nothing unit.
	Delete(ctx context.Context, rideID string) error
}

// RequestRepository is the port for join request persistence. Approve and
// Withdraw carry the seat-count invariant and must execute as one atomic
// read-modify-write across the ride and request records.
type RequestRepository interface {
	// Create persists a new pending request, or ErrDuplicateRequest when one
	// already exists for the (ride, requester) pair.
	Create(ctx context.Context, req *Request) error

	// FindByRide returns all requests for a ride with requester display
	// names resolved where known.
	FindByRide(ctx context.Context, rideID string) ([]*Request, error)

	// FindByRequester returns the requester's own request for the ride, or
	// ErrNotFound.
	FindByRequester(ctx context.Context, rideID, requesterID string) (*Request, error)

	// FindByID returns the request, or ErrNotFound.
	FindByID(ctx context.Context, rideID, requestID string) (*Request, error)

	// Approve atomically checks seats, decrements the count and marks the
	// request approved. Returns ErrNoSeatsAvailable with no mutation when
	// the ride is full; a request that is already approved is a no-op.
	Approve(ctx context.Context, rideID, requestID string) error

	// Withdraw atomically deletes the request, incrementing the seat count
	// iff the request was approved.
	Withdraw(ctx context.Context, rideID, requestID string) error
}

// MessageRepository is the port for ride chat persistence.
type MessageRepository interface {
	// Save persists a message; the creation timestamp is assigned by the
	// store so ordering is monotonic per ride.
	Save(ctx context.Context, msg *Message) error

	// ListByRide returns the full message set for a ride ordered by
	// creation time ascending.
	ListByRide(ctx context.Context, rideID string) ([]Message, error)
}

// BlockRepository is the port for the per-user block registry.
type BlockRepository interface {
	// Save persists a block entry. Saving an existing pair is a no-op.
	Save(ctx context.Context, entry BlockEntry) error

	// FetchBlocked returns the set of identities blocked by blockerID.
	FetchBlocked(ctx context.Context, blockerID string) (map[string]struct{}, error)
}

// ReportSink is the append-only moderation channel. Writes are best-effort:
// callers log failures and move on.
type ReportSink interface {
	Append(ctx context.Context, report Report) error
}
