package chat

import (
	"sync"
)

// Registry is the process-wide mapping from room ID (team ID) to the set of
// sessions currently in that room. It is the only shared mutable state of the
// chat subsystem; all membership changes go through Join, Leave and the
// session-driven disconnect sweep.
//
// Rooms are created on first join and removed the moment they empty, so a
// long-running process does not accumulate dead room entries.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]map[*Session]struct{}
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[int64]map[*Session]struct{}),
	}
}

// Join adds the session to the room, creating the room if absent.
// Idempotent if the session is already a member.
func (r *Registry) Join(roomID int64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[*Session]struct{})
		r.rooms[roomID] = room
	}
	room[s] = struct{}{}
}

// Leave removes the session from the room. A missing room or membership is a
// no-op, not an error. The room is reclaimed immediately when it empties.
func (r *Registry) Leave(roomID int64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}

// Members returns a snapshot of the room's current sessions. The snapshot is
// consistent at the instant of the call; joins and leaves racing with it may
// or may not be reflected but can never tear it.
func (r *Registry) Members(roomID int64) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	members := make([]*Session, 0, len(room))
	for s := range room {
		members = append(members, s)
	}
	return members
}

// Contains reports whether the session is currently in the room.
func (r *Registry) Contains(roomID int64, s *Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[roomID][s]
	return ok
}

// RoomCount returns the number of live (non-empty) rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
