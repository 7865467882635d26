// Package activity turns events published on the bus into persistent team
// log rows. Request handlers never write logs directly; they publish a
// team.activity event and move on.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/pubsub"
)

// Event is the payload carried on the team.activity topic.
type Event struct {
	Desc string `json:"desc"`
}

// Subscriber listens for team activity events and persists them.
type Subscriber struct {
	subscriber pubsub.Subscriber
	logs       domain.TeamLogRepository
}

// NewSubscriber creates a subscriber bound to the given log store.
func NewSubscriber(sub pubsub.Subscriber, logs domain.TeamLogRepository) *Subscriber {
	return &Subscriber{
		subscriber: sub,
		logs:       logs,
	}
}

// Start begins listening for activity events. It returns immediately; the
// subscription runs until the context is canceled.
func (s *Subscriber) Start(ctx context.Context) {
	slog.Info("Starting activity subscriber")

	go func() {
		err := s.subscriber.Subscribe(ctx, pubsub.TopicTeamActivity, s.handleActivity)
		if err != nil && err != context.Canceled {
			slog.Error("Activity subscriber stopped with error", "error", err)
		}
	}()
}

// handleActivity persists one activity event as a log row. Malformed or
// incomplete events are logged and dropped rather than retried; a lost feed
// line is not worth poisoning the queue.
func (s *Subscriber) handleActivity(ctx context.Context, msg pubsub.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		slog.Error("Dropping malformed activity event", "error", err)
		return nil
	}
	if msg.TeamID == 0 || event.Desc == "" {
		slog.Warn("Dropping incomplete activity event", "teamID", msg.TeamID)
		return nil
	}

	entry := &domain.TeamLog{
		UID:      msg.UserID,
		Desc:     event.Desc,
		Datetime: time.Now().UTC(),
		TeamID:   msg.TeamID,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		slog.Error("Failed to persist activity log", "teamID", msg.TeamID, "error", err)
		return err
	}
	return nil
}
