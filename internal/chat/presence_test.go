package chat

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenigame/zenigame/internal/pubsub"
)

func publishLifecycleEvent(t *testing.T, bridge *pubsub.WatermillBridge, topic, sessionID string) {
	t.Helper()
	err := bridge.Publish(context.Background(), pubsub.Message{
		Topic:   topic,
		Payload: []byte(strconv.Quote(sessionID)),
	})
	require.NoError(t, err)
}

func TestPresenceTracksConnectionChurn(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	presence := NewPresence(bridge)
	presence.Start(ctx)

	publishLifecycleEvent(t, bridge, pubsub.TopicChatConnected, "s1")
	publishLifecycleEvent(t, bridge, pubsub.TopicChatConnected, "s2")

	assert.Eventually(t, func() bool {
		return presence.Connected() == 2
	}, 2*time.Second, 10*time.Millisecond)

	publishLifecycleEvent(t, bridge, pubsub.TopicChatDisconnected, "s1")

	assert.Eventually(t, func() bool {
		return presence.Connected() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPresenceNeverGoesNegative(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	presence := NewPresence(bridge)
	presence.Start(ctx)

	// A disconnect without a matching connect can happen when the tracker
	// starts after sessions were already open.
	publishLifecycleEvent(t, bridge, pubsub.TopicChatDisconnected, "stale")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, presence.Connected())
}
