// Package live provides in-process change notification and live query streams.
//
// A Hub fans out "something changed" signals per topic. A Stream re-runs a
// query each time its topic is signalled and delivers the full result set,
// the same way a document-store snapshot listener does.
package live

import (
	"sync"
)

// Hub routes change notifications to topic subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription receives a signal on C after each Publish to its topic.
// Signals are coalesced: C holds at most one pending notification.
type Subscription struct {
	C <-chan struct{}

	hub   *Hub
	topic string
	ch    chan struct{}
	once  sync.Once
}

func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan struct{}, 1)
	sub := &Subscription{C: ch, hub: h, topic: topic, ch: ch}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish notifies every subscriber of topic. It never blocks.
func (h *Hub) Publish(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Unsubscribe detaches the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set := s.hub.subs[s.topic]; set != nil {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.topic)
			}
		}
		s.hub.mu.Unlock()
	})
}
