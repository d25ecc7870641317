// Package realtime routes pushes to live client connections: a per-process
// session registry, chat rooms, the websocket transport and an optional
// Redis pub/sub broker for multi-instance deployments.
package realtime

import (
	"sync"

	"go-placement-backend/internal/domain"
)

// Session is one live connection held by a user.
type Session interface {
	ID() string
	UserID() string
	// Send queues ev for the connection. It never blocks; false means the
	// frame was dropped.
	Send(ev domain.Event) bool
	Close()
}

// SessionRegistry maps an online user to at most one session.
type SessionRegistry interface {
	// Register replaces any prior session of userID.
	Register(userID string, s Session)
	// Unregister removes the mapping only while it still points at s.
	Unregister(s Session) bool
	Lookup(userID string) (Session, bool)
}

// MemoryRegistry is a process-local SessionRegistry.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]Session)}
}

func (r *MemoryRegistry) Register(userID string, s Session) {
	r.mu.Lock()
	r.sessions[userID] = s
	r.mu.Unlock()
}

func (r *MemoryRegistry) Unregister(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[s.UserID()]
	if !ok || current.ID() != s.ID() {
		return false
	}
	delete(r.sessions, s.UserID())
	return true
}

func (r *MemoryRegistry) Lookup(userID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Len returns the number of online users.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
