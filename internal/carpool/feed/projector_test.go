package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
)

type stubMessages struct {
	mu     sync.Mutex
	byRide map[string][]domain.Message
	err    error
}

func (s *stubMessages) ListByRide(ctx context.Context, rideID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Message(nil), s.byRide[rideID]...), nil
}

func (s *stubMessages) add(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byRide == nil {
		s.byRide = make(map[string][]domain.Message)
	}
	s.byRide[msg.RideID] = append(s.byRide[msg.RideID], msg)
}

type stubBlocks struct {
	mu      sync.Mutex
	blocked map[string]map[string]struct{}
}

func (s *stubBlocks) FetchBlocked(ctx context.Context, blockerID string) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{})
	for id := range s.blocked[blockerID] {
		out[id] = struct{}{}
	}
	return out
}

func (s *stubBlocks) block(blockerID, blockedID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked == nil {
		s.blocked = make(map[string]map[string]struct{})
	}
	if s.blocked[blockerID] == nil {
		s.blocked[blockerID] = make(map[string]struct{})
	}
	s.blocked[blockerID][blockedID] = struct{}{}
}

func newProjectorEnv() (*Projector, *stubMessages, *stubBlocks, *Broker) {
	messages := &stubMessages{}
	blocks := &stubBlocks{}
	broker := NewBroker()
	p := NewProjector(messages, blocks, NewPolicy(), broker, logger.NewLogger("test"))
	return p, messages, blocks, broker
}

func msgAt(id, rideID, senderID, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:         id,
		RideID:     rideID,
		SenderID:   senderID,
		SenderName: senderID,
		Text:       text,
		CreatedAt:  at,
	}
}

func recvView(t *testing.T, sub *Subscription) []domain.Message {
	t.Helper()
	select {
	case view, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly")
		return view
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a view")
		return nil
	}
}

func expectNoView(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case view, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected view of %d messages", len(view))
		}
		t.Fatal("subscription closed unexpectedly")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestProjectorFiltersView(t *testing.T) {
	p, messages, blocks, _ := newProjectorEnv()
	base := time.Now()

	messages.add(msgAt("m2", "ride-1", "alice", "on my way", base.Add(2*time.Second)))
	messages.add(msgAt("m1", "ride-1", "bob", "leaving now", base.Add(time.Second)))
	messages.add(msgAt("m3", "ride-1", "mallory", "spam", base.Add(3*time.Second)))
	messages.add(msgAt("m4", "ride-1", "carol", "what the fuck", base.Add(4*time.Second)))
	messages.add(msgAt("m5", "ride-1", "", "no sender", base.Add(5*time.Second)))
	messages.add(msgAt("m2", "ride-1", "alice", "on my way", base.Add(2*time.Second)))
	blocks.block("viewer", "mallory")

	sub, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	defer sub.Stop()

	view := recvView(t, sub)
	require.Len(t, view, 2)
	assert.Equal(t, "m1", view[0].ID, "ordered by creation time")
	assert.Equal(t, "m2", view[1].ID)
}

func TestProjectorEmitsOnNotify(t *testing.T) {
	p, messages, _, broker := newProjectorEnv()
	base := time.Now()
	messages.add(msgAt("m1", "ride-1", "alice", "hi", base))

	sub, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	defer sub.Stop()

	require.Len(t, recvView(t, sub), 1)

	messages.add(msgAt("m2", "ride-1", "bob", "hello", base.Add(time.Second)))
	broker.Notify("ride-1")
	assert.Len(t, recvView(t, sub), 2)

	// A notification that changes nothing visible is not re-emitted.
	broker.Notify("ride-1")
	expectNoView(t, sub)
}

func TestProjectorBlockedSetIsSnapshotted(t *testing.T) {
	p, messages, blocks, broker := newProjectorEnv()
	base := time.Now()
	messages.add(msgAt("m1", "ride-1", "alice", "hi", base))

	sub, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	require.Len(t, recvView(t, sub), 1)

	// A block during a live subscription does not re-filter it.
	blocks.block("viewer", "alice")
	messages.add(msgAt("m2", "ride-1", "alice", "still here", base.Add(time.Second)))
	broker.Notify("ride-1")
	assert.Len(t, recvView(t, sub), 2)

	// The next subscription picks the block up.
	sub.Stop()
	sub2, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	defer sub2.Stop()
	assert.Empty(t, recvView(t, sub2))
}

func TestProjectorReplacesActiveSubscription(t *testing.T) {
	p, messages, _, _ := newProjectorEnv()
	messages.add(msgAt("m1", "ride-1", "alice", "hi", time.Now()))

	first, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)

	second, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	defer second.Stop()

	// The first subscription winds down; its channel closes after any
	// already-delivered view is drained.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-first.C:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("replaced subscription never closed")
		}
	}
}

func TestProjectorRequiresViewer(t *testing.T) {
	p, _, _, _ := newProjectorEnv()

	_, err := p.Subscribe(context.Background(), "", "ride-1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestProjectorSurvivesStoreFailure(t *testing.T) {
	p, messages, _, broker := newProjectorEnv()
	messages.err = domain.ErrStoreUnavailable

	sub, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)
	defer sub.Stop()

	// The failed initial read produces no view but keeps the subscription
	// alive.
	expectNoView(t, sub)

	messages.mu.Lock()
	messages.err = nil
	messages.mu.Unlock()
	messages.add(msgAt("m1", "ride-1", "alice", "hi", time.Now()))
	broker.Notify("ride-1")

	assert.Len(t, recvView(t, sub), 1)
}

func TestSubscriptionStopIsIdempotent(t *testing.T) {
	p, _, _, _ := newProjectorEnv()

	sub, err := p.Subscribe(context.Background(), "viewer", "ride-1")
	require.NoError(t, err)

	sub.Stop()
	sub.Stop()

	select {
	case _, ok := <-sub.C:
		if ok {
			// Initial empty view may land before the stop; the close follows.
			_, ok = <-sub.C
			assert.False(t, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed after Stop")
	}
}
