package chat

import "encoding/json"

// EventType names the messages exchanged on a chat socket. Inbound events are
// dispatched through an explicit switch rather than any reflective lookup.
type EventType string

const (
	// Inbound events.
	EventJoin  EventType = "join"
	EventLeave EventType = "leave"
	EventChat  EventType = "chat"

	// Outbound events.
	EventEnter EventType = "enter"
	EventExit  EventType = "exit"
)

// Envelope is the wire frame of every chat message: an event name plus an
// opaque data object. Data stays raw so chat payloads can be forwarded
// verbatim, byte for byte.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinData is the payload of an inbound join event. The token is the same
// credential issued by /users/token.
type JoinData struct {
	TID   int64  `json:"tid"`
	Token string `json:"token"`
}

// LeaveData is the payload of an inbound leave event. UID is supplied by the
// client for display only and is intentionally not re-verified; the exit
// notification carries it as-is.
type LeaveData struct {
	TID int64 `json:"tid"`
	UID int64 `json:"uid"`
}

// chatData sniffs only the room out of a chat payload; the rest is opaque.
type chatData struct {
	TID int64 `json:"tid"`
}

// UserData is the payload of outbound enter and exit notifications.
type UserData struct {
	UID int64 `json:"uid"`
}

// encodeEvent frames an outbound event. Marshal failures cannot occur for
// the fixed payload types used here, so the error is swallowed by callers.
func encodeEvent(event EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
