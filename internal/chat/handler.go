package chat

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/pubsub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from native apps as well as browsers, so the origin
	// check is left open here and enforced at the proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler holds dependencies for the chat module's HTTP handlers.
type Handler struct {
	relay     *Relay
	publisher pubsub.Publisher
}

// NewHandler creates a new chat handler with its dependencies.
func NewHandler(relay *Relay, publisher pubsub.Publisher) *Handler {
	return &Handler{relay: relay, publisher: publisher}
}

// ServeWS upgrades the request to a WebSocket connection and runs the
// session pumps until the peer goes away. The connection itself is
// unauthenticated; each join event carries its own credential.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return err
	}

	session := NewSession(uuid.NewString(), conn)
	slog.Info("Chat session connected", "sessionID", session.ID, "remoteAddr", conn.RemoteAddr().String())
	h.publishLifecycle(pubsub.TopicChatConnected, session)

	go session.writePump()
	go func() {
		session.readPump(h.relay)
		h.publishLifecycle(pubsub.TopicChatDisconnected, session)
		slog.Info("Chat session disconnected", "sessionID", session.ID)
	}()

	return nil
}

// publishLifecycle uses a background context because the session outlives
// the hijacked HTTP request.
func (h *Handler) publishLifecycle(topic string, session *Session) {
	msg := pubsub.Message{
		Topic:   topic,
		Payload: []byte(strconv.Quote(session.ID)),
	}
	if err := h.publisher.Publish(context.Background(), msg); err != nil {
		slog.Error("Failed to publish chat lifecycle event", "topic", topic, "sessionID", session.ID, "error", err)
	}
}
