package feed

import (
	"context"
	"sort"
	"sync"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
)

// MessageSource is the slice of the store the projector reads: the full
// ordered message set of a ride.
type MessageSource interface {
	ListByRide(ctx context.Context, rideID string) ([]domain.Message, error)
}

// BlockSource yields the viewer's blocked set. Implementations never fail;
// a missing identity or a read error degrades to "nothing blocked".
type BlockSource interface {
	FetchBlocked(ctx context.Context, blockerID string) map[string]struct{}
}

// Projector produces, per (viewer, ride) pair, a live filtered view of the
// ride's message stream. Each subscriber runs on its own goroutine with its
// own delivery channel, so one stalled viewer never blocks the rest.
//
// The viewer's blocked set is snapshotted once at subscription start. A
// block made during an active subscription takes effect when the viewer
// next subscribes; it does not retroactively re-filter the live view.
type Projector struct {
	messages MessageSource
	blocks   BlockSource
	policy   *Policy
	broker   *Broker
	log      logger.Logger

	mu     sync.Mutex
	active map[string]*Subscription
}

func NewProjector(messages MessageSource, blocks BlockSource, policy *Policy, broker *Broker, log logger.Logger) *Projector {
	return &Projector{
		messages: messages,
		blocks:   blocks,
		policy:   policy,
		broker:   broker,
		log:      log,
		active:   make(map[string]*Subscription),
	}
}

// Subscription is a live, stoppable view of one ride for one viewer.
// Views arrive on C, newest state only: if the consumer lags, intermediate
// snapshots are replaced rather than queued.
type Subscription struct {
	C <-chan []domain.Message

	ch     chan []domain.Message
	stop   chan struct{}
	once   sync.Once
	parent *Projector
	key    string
}

// Stop ends the subscription. It is idempotent; stopping twice is a no-op.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
}

func (s *Subscription) push(view []domain.Message) {
	for {
		select {
		case s.ch <- view:
			return
		default:
			// Drop the stale pending snapshot and retry with the fresh one.
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Subscribe starts a filtered live view of rideID for viewerID. Only one
// subscription per (viewer, ride) pair is live at a time; starting a new
// one stops the previous. The subscription ends on Stop or when ctx is
// cancelled.
func (p *Projector) Subscribe(ctx context.Context, viewerID, rideID string) (*Subscription, error) {
	if viewerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	key := viewerID + "|" + rideID

	sub := &Subscription{
		ch:     make(chan []domain.Message, 1),
		stop:   make(chan struct{}),
		parent: p,
		key:    key,
	}
	sub.C = sub.ch

	p.mu.Lock()
	if prev, ok := p.active[key]; ok {
		prev.Stop()
	}
	p.active[key] = sub
	p.mu.Unlock()

	// Blocked set is fetched once, at subscription start.
	blocked := p.blocks.FetchBlocked(ctx, viewerID)
	notify := p.broker.Subscribe(rideID)

	go p.run(ctx, sub, rideID, viewerID, blocked, notify)

	return sub, nil
}

func (p *Projector) run(ctx context.Context, sub *Subscription, rideID, viewerID string, blocked map[string]struct{}, notify chan struct{}) {
	defer func() {
		p.broker.Unsubscribe(rideID, notify)
		p.mu.Lock()
		if p.active[sub.key] == sub {
			delete(p.active, sub.key)
		}
		p.mu.Unlock()
		close(sub.ch)
	}()

	log := p.log.WithFields(logger.LogFields{"ride_id": rideID, "viewer_id": viewerID})

	var last []domain.Message
	emitted := false

	recompute := func() {
		view, err := p.project(ctx, rideID, blocked)
		if err != nil {
			// Read-only path: log and wait for the next notification.
			log.Error("feed_project_failed", err)
			return
		}
		if emitted && sameView(last, view) {
			return
		}
		last = view
		emitted = true
		sub.push(view)
	}

	recompute()

	for {
		select {
		case <-ctx.Done():
			sub.Stop()
			return
		case <-sub.stop:
			return
		case <-notify:
			recompute()
		}
	}
}

// project recomputes the full filtered view from the store. Every
// notification is treated as "the current full ordered set": the view is
// rebuilt from scratch rather than patched incrementally.
func (p *Projector) project(ctx context.Context, rideID string, blocked map[string]struct{}) ([]domain.Message, error) {
	msgs, err := p.messages.ListByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	view := make([]domain.Message, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))

	for _, m := range msgs {
		if !m.IsWellFormed() {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		if _, hidden := blocked[m.SenderID]; hidden {
			continue
		}
		if p.policy.Objectionable(m.Text) {
			continue
		}
		seen[m.ID] = struct{}{}
		view = append(view, m)
	}

	sort.SliceStable(view, func(i, j int) bool {
		if view[i].CreatedAt.Equal(view[j].CreatedAt) {
			return view[i].ID < view[j].ID
		}
		return view[i].CreatedAt.Before(view[j].CreatedAt)
	})

	return view, nil
}

func sameView(a, b []domain.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
