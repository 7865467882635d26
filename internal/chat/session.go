package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 54 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Outbound buffer per session; messages are dropped when it fills.
	sendBuffer = 256
)

// Session represents one live client connection. The rooms set tracks which
// rooms this connection has joined; it is read and written only by the
// session's reader goroutine, which serializes all events for a connection,
// so it needs no lock of its own.
type Session struct {
	// ID is an opaque per-connection handle assigned at upgrade time.
	ID string

	conn  *websocket.Conn
	rooms map[int64]struct{}

	// sendMu guards send and closed. A broadcast may still hold a member
	// snapshot taken before the session disconnected, so Enqueue and Close
	// must agree on whether the channel is open.
	sendMu sync.Mutex
	send   chan []byte
	closed bool
}

// NewSession wraps an accepted WebSocket connection. conn may be nil in
// tests that only exercise the relay logic through the send channel.
func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		ID:    id,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[int64]struct{}),
	}
}

// Rooms returns the IDs of the rooms this session has joined.
func (s *Session) Rooms() []int64 {
	ids := make([]int64, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// InRoom reports whether this session has joined the room, from the
// session's own point of view.
func (s *Session) InRoom(roomID int64) bool {
	_, ok := s.rooms[roomID]
	return ok
}

// Enqueue places a message on the session's outbound buffer without
// blocking. Delivery is best-effort: if the buffer is full the message is
// dropped, on the assumption that the client is lagging or dead. Enqueue on
// a closed session is a no-op, never a panic.
func (s *Session) Enqueue(msg []byte) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.send <- msg:
	default:
		slog.Warn("Session send buffer full, dropping message", "sessionID", s.ID)
	}
}

// Close shuts the outbound channel, terminating the write pump. Safe to call
// more than once and concurrently with Enqueue.
func (s *Session) Close() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// readPump pumps inbound frames from the WebSocket to the relay. It is the
// single reader for the connection; every event for this session is handled
// here in arrival order.
func (s *Session) readPump(relay *Relay) {
	defer func() {
		relay.HandleDisconnect(s)
		s.Close()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error("WebSocket read error", "sessionID", s.ID, "error", err)
			}
			return
		}
		relay.HandleEvent(s, raw)
	}
}

// writePump pumps messages from the send channel to the WebSocket and keeps
// the connection alive with periodic pings. It is the single writer for the
// connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Error("WebSocket write error", "sessionID", s.ID, "error", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
