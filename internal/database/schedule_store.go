package database

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// ScheduleStore implements domain.ScheduleRepository on SurrealDB.
type ScheduleStore struct {
	db *surrealdb.DB
}

// NewScheduleStore creates a new schedule store.
func NewScheduleStore(db *surrealdb.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Create inserts a new schedule for its team.
func (s *ScheduleStore) Create(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	sid, err := NextID(ctx, s.db, "schedule")
	if err != nil {
		return nil, err
	}

	query := "CREATE type::thing('schedule', $sid) CONTENT $data"
	created, err := QueryOne[domain.Schedule](ctx, s.db, query, map[string]any{
		"sid":  sid,
		"data": schedule,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create schedule returned no record")
	}
	return created, nil
}

// GetByID retrieves a schedule by its numeric ID.
func (s *ScheduleStore) GetByID(ctx context.Context, sid int64) (*domain.Schedule, error) {
	query := "SELECT * FROM type::thing('schedule', $sid)"
	schedule, err := QueryOne[domain.Schedule](ctx, s.db, query, map[string]any{"sid": sid})
	if err != nil {
		return nil, err
	}
	if schedule == nil || schedule.ID == nil {
		return nil, domain.ErrNotFound
	}
	return schedule, nil
}

// ListOverlapping returns the team's schedules whose span intersects [from, to].
func (s *ScheduleStore) ListOverlapping(ctx context.Context, tid int64, from, to time.Time) ([]*domain.Schedule, error) {
	query := `
		SELECT * FROM schedule
		WHERE team_id = $tid AND start <= $to AND end >= $from
		ORDER BY start
	`
	return Query[*domain.Schedule](ctx, s.db, query, map[string]any{
		"tid":  tid,
		"from": from,
		"to":   to,
	})
}

// Update merges the set fields of update into the schedule record.
func (s *ScheduleStore) Update(ctx context.Context, sid int64, update domain.ScheduleUpdate) (*domain.Schedule, error) {
	data := map[string]any{}
	if update.Desc != nil {
		data["desc"] = *update.Desc
	}
	if update.Urgency != nil {
		data["urgency"] = *update.Urgency
	}
	if update.Start != nil {
		data["start"] = *update.Start
	}
	if update.End != nil {
		data["end"] = *update.End
	}
	if len(data) == 0 {
		return s.GetByID(ctx, sid)
	}

	query := "UPDATE type::thing('schedule', $sid) MERGE $data RETURN AFTER"
	schedule, err := QueryOne[domain.Schedule](ctx, s.db, query, map[string]any{"sid": sid, "data": data})
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, domain.ErrNotFound
	}
	return schedule, nil
}

// Delete removes a schedule.
func (s *ScheduleStore) Delete(ctx context.Context, sid int64) error {
	query := "DELETE type::thing('schedule', $sid)"
	return Execute(ctx, s.db, query, map[string]any{"sid": sid})
}
