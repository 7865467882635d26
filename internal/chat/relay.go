package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// TokenVerifier resolves an opaque credential to a user ID. It is how the
// relay consumes the application's token layer without depending on it.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// MembershipOracle answers whether a user currently belongs to a team. The
// team store implements it; the relay treats it as an opaque query.
type MembershipOracle interface {
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
}

// Relay orchestrates the chat subsystem: it validates each inbound event
// against the verifier and the membership oracle, mutates the room registry,
// and fans outbound notifications out to room members.
//
// Authorization is evaluated per event from data carried in that event; no
// authenticated state is retained on the connection between events. Every
// failure mode (bad token, non-member, unknown room, malformed payload,
// oracle error) degrades to silently dropping the event so that unauthorized
// probes learn nothing and a bad frame never kills the connection.
type Relay struct {
	registry *Registry
	verifier TokenVerifier
	members  MembershipOracle

	// dispatchMu serializes broadcasts so that every member of a room
	// observes messages in the same relative order.
	dispatchMu sync.Mutex
}

// NewRelay creates a relay around the given registry and oracles.
func NewRelay(registry *Registry, verifier TokenVerifier, members MembershipOracle) *Relay {
	return &Relay{
		registry: registry,
		verifier: verifier,
		members:  members,
	}
}

// HandleEvent decodes one inbound frame and dispatches it. Unknown events
// and malformed envelopes are dropped.
func (r *Relay) HandleEvent(s *Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Debug("Dropping malformed chat frame", "sessionID", s.ID, "error", err)
		return
	}

	switch env.Event {
	case EventJoin:
		r.handleJoin(s, env.Data)
	case EventLeave:
		r.handleLeave(s, env.Data)
	case EventChat:
		r.handleChat(s, env.Data)
	default:
		slog.Debug("Dropping unknown chat event", "sessionID", s.ID, "event", string(env.Event))
	}
}

// handleJoin admits the session to a room after both oracles agree, then
// notifies the whole room (joiner included) with an enter event.
func (r *Relay) handleJoin(s *Session, data json.RawMessage) {
	var payload JoinData
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	uid, err := r.verifier.Verify(payload.Token)
	if err != nil {
		// Unverifiable token: fail closed, fail silent.
		return
	}

	ok, err := r.members.IsMember(context.Background(), payload.TID, uid)
	if err != nil {
		// A failed oracle call is treated as a negative answer.
		slog.Error("Membership check failed", "tid", payload.TID, "uid", uid, "error", err)
		return
	}
	if !ok {
		return
	}

	r.registry.Join(payload.TID, s)
	s.rooms[payload.TID] = struct{}{}

	msg, err := encodeEvent(EventEnter, UserData{UID: uid})
	if err != nil {
		return
	}
	r.broadcast(payload.TID, msg)
}

// handleLeave removes the session from a room it has joined and notifies the
// remaining members with an exit event. The uid in the notification is the
// caller-supplied one, forwarded unverified for wire compatibility.
func (r *Relay) handleLeave(s *Session, data json.RawMessage) {
	var payload LeaveData
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if !s.InRoom(payload.TID) {
		// Never joined from the relay's point of view: no-op.
		return
	}

	r.registry.Leave(payload.TID, s)
	delete(s.rooms, payload.TID)

	msg, err := encodeEvent(EventExit, UserData{UID: payload.UID})
	if err != nil {
		return
	}
	r.broadcast(payload.TID, msg)
}

// handleChat forwards the payload verbatim to every member of the target
// room, sender included.
func (r *Relay) handleChat(s *Session, data json.RawMessage) {
	var payload chatData
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if !s.InRoom(payload.TID) {
		return
	}

	msg, err := json.Marshal(Envelope{Event: EventChat, Data: data})
	if err != nil {
		return
	}
	r.broadcast(payload.TID, msg)
}

// HandleDisconnect removes the session from every room it had joined,
// driven by the session's own room set. No exit notification is sent for an
// ungraceful disconnect.
func (r *Relay) HandleDisconnect(s *Session) {
	for roomID := range s.rooms {
		r.registry.Leave(roomID, s)
		delete(s.rooms, roomID)
	}
}

// broadcast delivers msg to a consistent snapshot of the room's members.
// The dispatch lock makes the relay a global serializing dispatcher: two
// broadcasts to the same room are observed by all members in the same order.
func (r *Relay) broadcast(roomID int64, msg []byte) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	for _, member := range r.registry.Members(roomID) {
		member.Enqueue(msg)
	}
}
