package feed

import "sync"

// Broker fans change notifications out to feed subscriptions, keyed by ride.
// Notifications carry no payload: a subscriber treats each one as "the
// message set may have changed" and recomputes its view from the store, so
// it does not matter whether the underlying notification was a full
// snapshot or an incremental delta.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe registers interest in a ride's message stream. The returned
// channel has capacity one; pending notifications coalesce.
func (b *Broker) Subscribe(rideID string) chan struct{} {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[rideID] == nil {
		b.subs[rideID] = make(map[chan struct{}]struct{})
	}
	b.subs[rideID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a channel previously returned by Subscribe.
func (b *Broker) Unsubscribe(rideID string, ch chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[rideID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.subs, rideID)
		}
	}
}

// Notify wakes every subscriber of the ride. Sends never block: a
// subscriber that already holds a pending notification is left as is, so a
// slow consumer cannot stall delivery to the others.
func (b *Broker) Notify(rideID string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[rideID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
