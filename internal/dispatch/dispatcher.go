package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// RingCapacity is the default bounded in-memory ring size
// (ALERT_RING_CAPACITY).
const RingCapacity = 200

// ReplayCount is how many recent alerts a new subscriber receives before
// joining the live stream (default K=20).
const ReplayCount = 20

// subscriberQueueDepth bounds each subscriber's pending channel; beyond
// this, Publish drops the oldest queued alert for that subscriber rather
// than blocking.
const subscriberQueueDepth = 64

// Subscription is a live per-client alert feed.
type Subscription struct {
	ID      string
	Alerts  <-chan *Alert
	Dropped func() uint64

	disp *Dispatcher
	ch   chan *Alert
	mu   *sync.Mutex
	drop *atomic.Uint64
}

// Close unregisters the subscription. Safe to call once.
func (s *Subscription) Close() {
	s.disp.unsubscribe(s.ID)
}

// Dispatcher is the single process-wide alert fan-out and history owner.
type Dispatcher struct {
	ring *ring

	mu          sync.Mutex
	subscribers map[string]*subscriber
}

type subscriber struct {
	ch   chan *Alert
	mu   sync.Mutex
	drop atomic.Uint64
}

func NewDispatcher(capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = RingCapacity
	}
	return &Dispatcher{ring: newRing(capacity), subscribers: make(map[string]*subscriber)}
}

// Publish attaches alert to the ring, assigning an id if unset, then fans
// it out to every current subscriber. A slow subscriber never blocks
// publication: its oldest queued alert is dropped to make room, and its
// per-subscriber drop counter is incremented.
func (d *Dispatcher) Publish(a *Alert) *Alert {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	d.ring.add(a)

	d.mu.Lock()
	subs := make([]*subscriber, 0, len(d.subscribers))
	for _, s := range d.subscribers {
		subs = append(subs, s)
	}
	d.mu.Unlock()

	for _, s := range subs {
		s.mu.Lock()
		select {
		case s.ch <- a:
		default:
			// Drop oldest, then retry once; the channel is single-writer
			// (Publish holds the per-subscriber lock) so this cannot race
			// with another Publish for the same subscriber.
			select {
			case <-s.ch:
				s.drop.Add(1)
			default:
			}
			select {
			case s.ch <- a:
			default:
				s.drop.Add(1)
			}
		}
		s.mu.Unlock()
	}
	return a
}

// Subscribe registers a new subscriber, immediately backfilling it with
// the last ReplayCount ring alerts before it starts receiving the live
// stream.
func (d *Dispatcher) Subscribe() *Subscription {
	s := &subscriber{ch: make(chan *Alert, subscriberQueueDepth)}
	id := uuid.New().String()

	d.mu.Lock()
	d.subscribers[id] = s
	d.mu.Unlock()

	for _, a := range d.ring.last(ReplayCount) {
		select {
		case s.ch <- a:
		default:
		}
	}

	return &Subscription{
		ID:      id,
		Alerts:  s.ch,
		Dropped: s.drop.Load,
		disp:    d,
		ch:      s.ch,
	}
}

func (d *Dispatcher) unsubscribe(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subscribers, id)
}

// Acknowledge marks an alert read in the ring (idempotent). Returns
// whether the id was known.
func (d *Dispatcher) Acknowledge(id string) bool {
	return d.ring.acknowledge(id)
}

// Query returns ring alerts matching since/severity, newest-bounded by
// limit.
func (d *Dispatcher) Query(matches func(*Alert) bool, limit int) []*Alert {
	return d.ring.query(matches, limit)
}

// TotalDrops sums every subscriber's drop counter, for the diagnostics
// endpoint.
func (d *Dispatcher) TotalDrops() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var total uint64
	for _, s := range d.subscribers {
		total += s.drop.Load()
	}
	return total
}

// SubscriberCount reports the number of live subscriptions.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// SubscriberStat is one subscriber's diagnostics snapshot.
type SubscriberStat struct {
	ID      string
	Dropped uint64
}

// Snapshot reports every live subscriber's id and drop counter, for the
// diagnostics endpoint.
func (d *Dispatcher) Snapshot() []SubscriberStat {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SubscriberStat, 0, len(d.subscribers))
	for id, s := range d.subscribers {
		out = append(out, SubscriberStat{ID: id, Dropped: s.drop.Load()})
	}
	return out
}
