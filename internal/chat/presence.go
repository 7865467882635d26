package chat

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zenigame/zenigame/internal/pubsub"
)

// Presence consumes the chat lifecycle topics and tracks how many sessions
// are currently connected. It lives on the bus rather than inside the relay
// so connection churn can be observed without touching the socket path.
type Presence struct {
	subscriber pubsub.Subscriber

	mu        sync.Mutex
	connected int
}

// NewPresence creates a presence tracker reading from the given subscriber.
func NewPresence(subscriber pubsub.Subscriber) *Presence {
	return &Presence{subscriber: subscriber}
}

// Start begins consuming lifecycle events. It returns immediately; the
// subscriptions run until the context is canceled.
func (p *Presence) Start(ctx context.Context) {
	go func() {
		if err := p.subscriber.Subscribe(ctx, pubsub.TopicChatConnected, p.handleConnected); err != nil {
			slog.Error("Presence subscriber stopped", "topic", pubsub.TopicChatConnected, "error", err)
		}
	}()
	go func() {
		if err := p.subscriber.Subscribe(ctx, pubsub.TopicChatDisconnected, p.handleDisconnected); err != nil {
			slog.Error("Presence subscriber stopped", "topic", pubsub.TopicChatDisconnected, "error", err)
		}
	}()
}

// Connected returns the number of chat sessions currently online.
func (p *Presence) Connected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Presence) handleConnected(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	p.connected++
	count := p.connected
	p.mu.Unlock()

	slog.Info("Chat session online", "sessionID", sessionIDFromPayload(msg.Payload), "connected", count)
	return nil
}

func (p *Presence) handleDisconnected(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	if p.connected > 0 {
		p.connected--
	}
	count := p.connected
	p.mu.Unlock()

	slog.Info("Chat session offline", "sessionID", sessionIDFromPayload(msg.Payload), "connected", count)
	return nil
}

// sessionIDFromPayload decodes the quoted session ID carried on lifecycle
// events, falling back to the raw payload for display.
func sessionIDFromPayload(payload []byte) string {
	id, err := strconv.Unquote(string(payload))
	if err != nil {
		return string(payload)
	}
	return id
}
