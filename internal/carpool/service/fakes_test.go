package service

import (
	"context"
	"sync"
	"time"

	"ride-pool/internal/carpool/domain"
)

// memData backs the in-memory fakes. A single mutex serializes every
// operation, standing in for the store's transaction primitive.
type memData struct {
	mu       sync.Mutex
	rides    map[string]*domain.Ride
	requests map[string]*domain.Request
	messages map[string][]domain.Message
}

func newMemData() *memData {
	return &memData{
		rides:    make(map[string]*domain.Ride),
		requests: make(map[string]*domain.Request),
		messages: make(map[string][]domain.Message),
	}
}

func withSeats(r *domain.Ride, seats int) *domain.Ride {
	return domain.ReconstructRide(
		r.ID(), r.OwnerID(), r.OwnerName(), r.Route(), r.ScheduledAt(), seats,
		r.CarNumber(), r.CarModel(), r.StartLocationName(), r.EndLocationName(),
		r.StartLatitude(), r.StartLongitude(), r.CreatedAt(),
	)
}

type memRides struct {
	d *memData
}

func (m *memRides) Save(ctx context.Context, ride *domain.Ride) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	m.d.rides[ride.ID()] = ride
	return nil
}

func (m *memRides) FindByID(ctx context.Context, rideID string) (*domain.Ride, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	ride, ok := m.d.rides[rideID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ride, nil
}

func (m *memRides) List(ctx context.Context) ([]*domain.Ride, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	rides := make([]*domain.Ride, 0, len(m.d.rides))
	for _, r := range m.d.rides {
		rides = append(rides, r)
	}
	// Scheduled-time ascending, as the repository contract promises.
	for i := 1; i < len(rides); i++ {
		for j := i; j > 0 && rides[j].ScheduledAt().Before(rides[j-1].ScheduledAt()); j-- {
			rides[j], rides[j-1] = rides[j-1], rides[j]
		}
	}
	return rides, nil
}

func (m *memRides) Delete(ctx context.Context, rideID string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.rides[rideID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.d.rides, rideID)
	for id, req := range m.d.requests {
		if req.RideID() == rideID {
			delete(m.d.requests, id)
		}
	}
	delete(m.d.messages, rideID)
	return nil
}

type memRequests struct {
	d *memData
}

func (m *memRequests) Create(ctx context.Context, req *domain.Request) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, existing := range m.d.requests {
		if existing.RideID() == req.RideID() && existing.RequesterID() == req.RequesterID() {
			return domain.ErrDuplicateRequest
		}
	}
	m.d.requests[req.ID()] = req
	return nil
}

func (m *memRequests) FindByRide(ctx context.Context, rideID string) ([]*domain.Request, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	var reqs []*domain.Request
	for _, req := range m.d.requests {
		if req.RideID() == rideID {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (m *memRequests) FindByRequester(ctx context.Context, rideID, requesterID string) (*domain.Request, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, req := range m.d.requests {
		if req.RideID() == rideID && req.RequesterID() == requesterID {
			return req, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRequests) FindByID(ctx context.Context, rideID, requestID string) (*domain.Request, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	req, ok := m.d.requests[requestID]
	if !ok || req.RideID() != rideID {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (m *memRequests) Approve(ctx context.Context, rideID, requestID string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()

	ride, ok := m.d.rides[rideID]
	if !ok {
		return domain.ErrNotFound
	}
	req, ok := m.d.requests[requestID]
	if !ok || req.RideID() != rideID {
		return domain.ErrNotFound
	}
	if req.IsApproved() {
		return nil
	}
	if ride.SeatsAvailable() <= 0 {
		return domain.ErrNoSeatsAvailable
	}

	m.d.rides[rideID] = withSeats(ride, ride.SeatsAvailable()-1)
	m.d.requests[requestID] = domain.ReconstructRequest(
		req.ID(), req.RideID(), req.RequesterID(), req.RequesterName(), domain.StatusApproved,
	)
	return nil
}

func (m *memRequests) Withdraw(ctx context.Context, rideID, requestID string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()

	ride, ok := m.d.rides[rideID]
	if !ok {
		return domain.ErrNotFound
	}
	req, ok := m.d.requests[requestID]
	if !ok || req.RideID() != rideID {
		return domain.ErrNotFound
	}
	if req.IsApproved() {
		m.d.rides[rideID] = withSeats(ride, ride.SeatsAvailable()+1)
	}
	delete(m.d.requests, requestID)
	return nil
}

type memMessages struct {
	d *memData
}

func (m *memMessages) Save(ctx context.Context, msg *domain.Message) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	msg.CreatedAt = time.Now().UTC()
	m.d.messages[msg.RideID] = append(m.d.messages[msg.RideID], *msg)
	return nil
}

func (m *memMessages) ListByRide(ctx context.Context, rideID string) ([]domain.Message, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return append([]domain.Message(nil), m.d.messages[rideID]...), nil
}

type memBlocks struct {
	mu      sync.Mutex
	entries map[string]map[string]struct{}
	failAll bool
}

func newMemBlocks() *memBlocks {
	return &memBlocks{entries: make(map[string]map[string]struct{})}
}

func (m *memBlocks) Save(ctx context.Context, entry domain.BlockEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return domain.ErrStoreUnavailable
	}
	if m.entries[entry.BlockerID] == nil {
		m.entries[entry.BlockerID] = make(map[string]struct{})
	}
	m.entries[entry.BlockerID][entry.BlockedID] = struct{}{}
	return nil
}

func (m *memBlocks) FetchBlocked(ctx context.Context, blockerID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, domain.ErrStoreUnavailable
	}
	blocked := make(map[string]struct{})
	for id := range m.entries[blockerID] {
		blocked[id] = struct{}{}
	}
	return blocked, nil
}

type memReports struct {
	mu      sync.Mutex
	reports []domain.Report
	fail    bool
}

func (m *memReports) Append(ctx context.Context, report domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.ErrStoreUnavailable
	}
	m.reports = append(m.reports, report)
	return nil
}

type memEvents struct {
	mu    sync.Mutex
	count int
	fail  bool
}

func (m *memEvents) MessageCreated(ctx context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.ErrStoreUnavailable
	}
	m.count++
	return nil
}
