package notify

import (
	"context"
	"log/slog"
	"sync"
)

const subscriptionBuffer = 64

// Hub fans events out to the subscribers of each room on this instance.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[*Subscription]struct{}), logger: logger}
}

// Subscription receives the events of one room. Message events written by the
// subscription's own client are not delivered to it.
type Subscription struct {
	RoomID   string
	ClientID string

	hub    *Hub
	events chan Event
	once   sync.Once
}

// Events is closed when the subscription is closed.
func (s *Subscription) Events() <-chan Event { return s.events }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

func (s *Subscription) wants(e Event) bool {
	if e.Type == EventMessageAdded && e.Origin != "" && e.Origin == s.ClientID {
		return false
	}
	return true
}

// Subscribe registers clientID for roomID.
func (h *Hub) Subscribe(roomID, clientID string) *Subscription {
	sub := &Subscription{
		RoomID:   roomID,
		ClientID: clientID,
		hub:      h,
		events:   make(chan Event, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	h.logger.Debug("subscription opened", "room_id", roomID, "client_id", clientID, "subscribers", len(subs))
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[sub.RoomID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, sub.RoomID)
		}
	}
	close(sub.events)
}

// Deliver hands e to every local subscriber of its room. Slow subscribers
// whose buffer is full miss the event; they recover by reloading state.
func (h *Hub) Deliver(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for sub := range h.rooms[e.RoomID] {
		if !sub.wants(e) {
			continue
		}
		select {
		case sub.events <- e:
			sent++
		default:
			h.logger.Warn("dropping event for slow subscriber", "room_id", e.RoomID, "client_id", sub.ClientID, "type", e.Type)
		}
	}
	return sent
}

// Publish implements Publisher for a single instance deployment.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.Deliver(e)
	return nil
}

// Subscribers returns the number of local subscribers of a room.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
