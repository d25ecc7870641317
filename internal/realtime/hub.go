package realtime

import (
	"context"
	"sync"

	"go-placement-backend/internal/domain"
)

// PresenceListener is told when a user or chat room may have gained or lost
// its last local session. Implementations re-check the hub themselves.
type PresenceListener interface {
	UserPresenceChanged(userID string)
	RoomPresenceChanged(chatID int64)
}

// Hub owns the session registry and the chat rooms of this process. It is
// the Pusher for single-instance deployments.
type Hub struct {
	registry SessionRegistry

	mu       sync.RWMutex
	sessions map[string]Session
	rooms    map[int64]map[string]Session
	joined   map[string]map[int64]struct{}
	listener PresenceListener
}

func NewHub(registry SessionRegistry) *Hub {
	if registry == nil {
		registry = NewMemoryRegistry()
	}
	return &Hub{
		registry: registry,
		sessions: make(map[string]Session),
		rooms:    make(map[int64]map[string]Session),
		joined:   make(map[string]map[int64]struct{}),
	}
}

// SetListener must be called before the first Register.
func (h *Hub) SetListener(l PresenceListener) {
	h.mu.Lock()
	h.listener = l
	h.mu.Unlock()
}

// Register makes s the user's current session. A previous session of the
// same user stays connected and keeps its rooms but no longer receives
// personal pushes.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	h.registry.Register(s.UserID(), s)
	listener := h.listener
	h.mu.Unlock()

	sessionsActive.Inc()
	if listener != nil {
		listener.UserPresenceChanged(s.UserID())
	}
}

// Unregister drops s from every room and from the registry if it is still
// the user's current session.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID())
	h.registry.Unregister(s)

	var emptied []int64
	for chatID := range h.joined[s.ID()] {
		if h.leaveLocked(chatID, s) {
			emptied = append(emptied, chatID)
		}
	}
	delete(h.joined, s.ID())
	listener := h.listener
	h.mu.Unlock()

	sessionsActive.Dec()
	if listener != nil {
		listener.UserPresenceChanged(s.UserID())
		for _, chatID := range emptied {
			listener.RoomPresenceChanged(chatID)
		}
	}
}

// Join adds s to the chat room. Participation is checked by the caller.
func (h *Hub) Join(chatID int64, s Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID()]; !ok {
		h.mu.Unlock()
		return
	}
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[string]Session)
		h.rooms[chatID] = room
	}
	room[s.ID()] = s
	if h.joined[s.ID()] == nil {
		h.joined[s.ID()] = make(map[int64]struct{})
	}
	h.joined[s.ID()][chatID] = struct{}{}
	listener := h.listener
	h.mu.Unlock()

	if !ok && listener != nil {
		listener.RoomPresenceChanged(chatID)
	}
}

func (h *Hub) Leave(chatID int64, s Session) {
	h.mu.Lock()
	emptied := h.leaveLocked(chatID, s)
	delete(h.joined[s.ID()], chatID)
	listener := h.listener
	h.mu.Unlock()

	if emptied && listener != nil {
		listener.RoomPresenceChanged(chatID)
	}
}

// leaveLocked reports whether the room became empty.
func (h *Hub) leaveLocked(chatID int64, s Session) bool {
	room, ok := h.rooms[chatID]
	if !ok {
		return false
	}
	if _, member := room[s.ID()]; !member {
		return false
	}
	delete(room, s.ID())
	if len(room) == 0 {
		delete(h.rooms, chatID)
		return true
	}
	return false
}

// PushToUser sends ev to the user's current local session.
func (h *Hub) PushToUser(_ context.Context, userID string, ev domain.Event) bool {
	delivered := h.deliverToUser(userID, ev)
	observePush("user", delivered)
	return delivered
}

// BroadcastToChat sends ev to every local session in the chat room.
func (h *Hub) BroadcastToChat(_ context.Context, chatID int64, ev domain.Event) bool {
	delivered := h.deliverToRoom(chatID, ev)
	observePush("chat", delivered)
	return delivered
}

func (h *Hub) deliverToUser(userID string, ev domain.Event) bool {
	s, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}
	return s.Send(ev)
}

func (h *Hub) deliverToRoom(chatID int64, ev domain.Event) bool {
	h.mu.RLock()
	members := make([]Session, 0, len(h.rooms[chatID]))
	for _, s := range h.rooms[chatID] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	delivered := false
	for _, s := range members {
		if s.Send(ev) {
			delivered = true
		}
	}
	return delivered
}

// HasUser reports whether userID holds a local session.
func (h *Hub) HasUser(userID string) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}

// HasRoom reports whether any local session joined the chat room.
func (h *Hub) HasRoom(chatID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID]) > 0
}

// ActiveSessions returns the number of live local connections.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll closes every live connection; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}
