package chat

import (
	"sync"

	"github.com/samber/lo"
)

// Sink is the outbound side of one live connection, owned by the transport.
type Sink interface {
	// ID returns the opaque connection identifier.
	ID() string

	// Deliver queues a frame without blocking. It fails when the connection
	// cannot keep up or is already gone.
	Deliver(frame []byte) error

	// Terminate closes the connection after frames already queued.
	Terminate(code int, reason string)
}

// Session binds one connection to a user in a room.
type Session struct {
	ConnID      string
	UserID      string
	DisplayName string
	RoomID      string

	sink Sink
}

// NewSession builds a session for sink.
func NewSession(sink Sink, userID, displayName, roomID string) Session {
	return Session{
		ConnID:      sink.ID(),
		UserID:      userID,
		DisplayName: displayName,
		RoomID:      roomID,
		sink:        sink,
	}
}

// Sink returns the connection the session delivers to.
func (s Session) Sink() Sink {
	return s.sink
}

// Registry maps connection ids to sessions and indexes them by room.
// The two maps always hold the same set of sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	rooms    map[string]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		rooms:    make(map[string]map[string]struct{}),
	}
}

// Register stores session under connID, replacing and un-indexing any previous one.
func (r *Registry) Register(connID string, session Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[connID]; ok {
		r.unindex(connID, prev.RoomID)
	}

	session.ConnID = connID
	r.sessions[connID] = session

	members, ok := r.rooms[session.RoomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[session.RoomID] = members
	}
	members[connID] = struct{}{}
}

// Unregister removes and returns the session of connID.
func (r *Registry) Unregister(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}

	delete(r.sessions, connID)
	r.unindex(connID, session.RoomID)

	return session, true
}

// unindex drops connID from roomID's set and removes empty rooms. Callers hold mu.
func (r *Registry) unindex(connID, roomID string) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Lookup returns the session of connID.
func (r *Registry) Lookup(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connID]
	return session, ok
}

// SessionsInRoom returns a snapshot of the sessions in roomID. Order is unspecified.
func (r *Registry) SessionsInRoom(roomID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	if len(members) == 0 {
		return nil
	}

	return lo.MapToSlice(members, func(connID string, _ struct{}) Session {
		return r.sessions[connID]
	})
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RoomCount returns the number of rooms with at least one session.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
