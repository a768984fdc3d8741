// Package events fans contact changes out to live subscribers, each of which
// only sees the contacts its requester may read.
package events

import (
	"log/slog"
	"sync"

	"agenda/internal/access"
	"agenda/internal/model"
)

// Type of a delivered event.
type Type string

const (
	Created    Type = "created"
	Updated    Type = "updated"
	Deleted    Type = "deleted"
	Visibility Type = "visibility"
	// Removed tells a subscriber that a contact it could read is no longer readable.
	Removed Type = "removed"
)

// Event is what a subscriber receives.
type Event struct {
	Type    Type                  `json:"type"`
	Contact model.ContactResponse `json:"contact"`
}

// Change describes one mutation. Before is nil for creations and After is nil
// for deletions. View is the rendered contact sent to subscribers.
type Change struct {
	Type   Type
	Before *model.Contact
	After  *model.Contact
	View   model.ContactResponse
}

// Publisher accepts contact changes.
type Publisher interface {
	Publish(change Change)
}

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// Hub tracks subscribers and delivers changes to them.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	log    *slog.Logger
}

func NewHub(buffer int, log *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer, log: log}
}

// Subscription is one live listener.
type Subscription struct {
	requester access.Requester
	ch        chan Event
	hub       *Hub
	once      sync.Once
}

// C delivers events. It is closed when the subscription ends, including when
// the hub drops a subscriber that fell behind.
func (s *Subscription) C() <-chan Event { return s.ch }

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a listener for r.
func (h *Hub) Subscribe(r access.Requester) *Subscription {
	s := &Subscription{requester: r, ch: make(chan Event, h.buffer), hub: h}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.log.Debug("event subscriber added", "requester", r.String(), "subscribers", n)
	return s
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}

// Publish delivers change to every subscriber allowed to see it. It never
// blocks; a subscriber whose queue is full is dropped.
func (h *Hub) Publish(change Change) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var slow []*Subscription
	for _, s := range subs {
		ev, ok := route(s.requester, change)
		if !ok {
			continue
		}
		if !s.offer(ev) {
			slow = append(slow, s)
		}
	}
	for _, s := range slow {
		h.log.Warn("dropping slow event subscriber", "requester", s.requester.String())
		h.remove(s)
	}
}

func (s *Subscription) offer(ev Event) (sent bool) {
	defer func() {
		// channel closed by a concurrent Close
		if recover() != nil {
			sent = true
		}
	}()
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// route decides what, if anything, r receives for change.
func route(r access.Requester, change Change) (Event, bool) {
	before := change.Before != nil && access.CanRead(r, change.Before)
	after := change.After != nil && access.CanRead(r, change.After)

	switch change.Type {
	case Deleted:
		if before {
			return Event{Type: Deleted, Contact: change.View}, true
		}
		return Event{}, false
	case Created, Updated, Visibility:
		if after {
			return Event{Type: change.Type, Contact: change.View}, true
		}
		if before {
			return Event{Type: Removed, Contact: model.ContactResponse{ID: change.View.ID}}, true
		}
		return Event{}, false
	default:
		return Event{}, false
	}
}
