// Package notify broadcasts order-change events so other open views can
// refresh without polling. Delivery is fire-and-forget: a slow subscriber
// drops events rather than blocking a mutation.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Event carries the mutated order's tracking code so listeners can refresh
// selectively instead of re-fetching everything.
type Event struct {
	OrderCode string `json:"orderCode"`
	Kind      Kind   `json:"kind"`
	At        int64  `json:"at"`
}

const subscriberBuffer = 16

// Hub fans events out to any number of subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; afterwards the channel is closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking. A full
// subscriber buffer means that listener misses the event; a re-fetch on the
// next event it does receive brings it back in sync.
func (h *Hub) Publish(ev Event) {
	if ev.At == 0 {
		ev.At = time.Now().UnixMilli()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
