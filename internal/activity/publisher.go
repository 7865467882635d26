package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/zenigame/zenigame/internal/pubsub"
)

// Record publishes one activity event for a team. Failures are logged and
// swallowed: the feed is best-effort and must never fail the request that
// produced it.
func Record(ctx context.Context, pub pubsub.Publisher, teamID, userID int64, desc string) {
	payload, err := json.Marshal(Event{Desc: desc})
	if err != nil {
		slog.Error("Failed to encode activity event", "teamID", teamID, "error", err)
		return
	}

	msg := pubsub.Message{
		Topic:   pubsub.TopicTeamActivity,
		TeamID:  teamID,
		UserID:  userID,
		Payload: payload,
	}
	if err := pub.Publish(ctx, msg); err != nil {
		slog.Error("Failed to publish activity event", "teamID", teamID, "error", err)
	}
}
