package controller

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-loconet/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Hub is a Sink that fans events out to any number of subscribers.
//
// Delivery never blocks the reader: when a subscriber's buffer is full the event is
// dropped for that subscriber and counted in Dropped.
type Hub struct {
	logger logger.Logger
	subs   *xsync.MapOf[uint64, *Subscription]
	nextID atomic.Uint64
}

var _ Sink = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub(l logger.Logger) *Hub {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Hub{
		logger: l,
		subs:   xsync.NewMapOf[uint64, *Subscription](),
	}
}

// Subscription is one consumer of a Hub.
type Subscription struct {
	id      uint64
	hub     *Hub
	ch      chan Event
	kinds   uint8 // bit set of EventKind, 0 = all
	dropped atomic.Uint64

	mu     sync.RWMutex // protect ch against close during Deliver
	closed bool
}

// Subscribe registers a consumer with a buffer of size buffer. If kinds are given, only
// events of those kinds are delivered.
func (h *Hub) Subscribe(buffer int, kinds ...EventKind) *Subscription {
	if buffer < 0 {
		buffer = 0
	}

	sub := &Subscription{
		id:  h.nextID.Add(1),
		hub: h,
		ch:  make(chan Event, buffer),
	}
	for _, k := range kinds {
		sub.kinds |= 1 << k
	}

	h.subs.Store(sub.id, sub)

	return sub
}

// Deliver implements Sink.
func (h *Hub) Deliver(ev Event) {
	h.subs.Range(func(_ uint64, sub *Subscription) bool {
		sub.offer(h.logger, ev)
		return true
	})
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	return h.subs.Size()
}

// Close unsubscribes all subscribers and closes their channels.
func (h *Hub) Close() {
	h.subs.Range(func(_ uint64, sub *Subscription) bool {
		sub.Close()
		return true
	})
}

// C returns the channel events are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Dropped returns the number of events discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close removes the subscription from its hub and closes its channel. It is idempotent.
func (s *Subscription) Close() {
	s.hub.subs.Delete(s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *Subscription) wants(k EventKind) bool {
	return s.kinds == 0 || s.kinds&(1<<k) != 0
}

func (s *Subscription) offer(l logger.Logger, ev Event) {
	if !s.wants(ev.Kind) {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- ev:
	default:
		if s.dropped.Add(1) == 1 {
			l.Warn("controller: subscriber buffer full, dropping events", "subscription", s.id)
		}
	}
}
