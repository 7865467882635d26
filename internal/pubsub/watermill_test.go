package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	sent := Message{
		Topic:   "test.topic",
		TeamID:  42,
		UserID:  7,
		Payload: []byte(`{"desc":"did a thing"}`),
		Metadata: map[string]string{
			"request_id": "req-123",
		},
	}
	require.NoError(t, bridge.Publish(ctx, sent))

	select {
	case msg := <-received:
		assert.Equal(t, "test.topic", msg.Topic)
		assert.Equal(t, int64(42), msg.TeamID)
		assert.Equal(t, int64(7), msg.UserID)
		assert.JSONEq(t, `{"desc":"did a thing"}`, string(msg.Payload))
		assert.Equal(t, "req-123", msg.Metadata["request_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestSubscribeIsolatedByTopic(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "topic.a", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "topic.b", Payload: []byte(`"other"`)}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "topic.a", Payload: []byte(`"mine"`)}))

	select {
	case msg := <-received:
		assert.Equal(t, "topic.a", msg.Topic)
		assert.Equal(t, `"mine"`, string(msg.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestHandlerErrorDoesNotStopSubscription(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int
	done := make(chan struct{})
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		attempts++
		if attempts == 1 {
			// First delivery is nacked and the transport redelivers it.
			return errors.New("handler failure")
		}
		close(done)
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte(`"one"`)}))

	select {
	case <-done:
		assert.Equal(t, 2, attempts)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for redelivery")
	}
}
