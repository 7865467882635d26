package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Schedule is a team calendar entry spanning one or more days.
// Urgency is a three-level priority (1 lowest, 3 highest).
type Schedule struct {
	ID      *surrealmodels.RecordID `json:"id,omitempty"`
	Desc    string                  `json:"desc"`
	Urgency int                     `json:"urgency"`
	Start   time.Time               `json:"start"`
	End     time.Time               `json:"end"`
	TeamID  int64                   `json:"team_id"`
}

// SID returns the numeric identifier of the schedule record.
func (s *Schedule) SID() int64 {
	if s.ID == nil {
		return 0
	}
	return recordInt(s.ID)
}

// ScheduleUpdate carries the optional fields of a schedule PATCH.
type ScheduleUpdate struct {
	Desc    *string
	Urgency *int
	Start   *time.Time
	End     *time.Time
}

// ScheduleRepository defines the contract for schedule storage operations.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *Schedule) (*Schedule, error)
	GetByID(ctx context.Context, sid int64) (*Schedule, error)
	// ListOverlapping returns the team's schedules whose [Start, End] span
	// intersects the [from, to] range.
	ListOverlapping(ctx context.Context, tid int64, from, to time.Time) ([]*Schedule, error)
	Update(ctx context.Context, sid int64, update ScheduleUpdate) (*Schedule, error)
	Delete(ctx context.Context, sid int64) error
}
