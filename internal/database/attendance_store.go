package database

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// AttendanceStore implements domain.AttendanceRepository on SurrealDB.
type AttendanceStore struct {
	db *surrealdb.DB
}

// NewAttendanceStore creates a new attendance store.
func NewAttendanceStore(db *surrealdb.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// Create inserts a check-in record.
func (s *AttendanceStore) Create(ctx context.Context, attendance *domain.Attendance) (*domain.Attendance, error) {
	aid, err := NextID(ctx, s.db, "attendance")
	if err != nil {
		return nil, err
	}

	query := "CREATE type::thing('attendance', $aid) CONTENT $data"
	created, err := QueryOne[domain.Attendance](ctx, s.db, query, map[string]any{
		"aid":  aid,
		"data": attendance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create attendance returned no record")
	}
	return created, nil
}

// FindByDay returns the user's check-in for the day containing at, if any.
func (s *AttendanceStore) FindByDay(ctx context.Context, tid, uid int64, at time.Time) (*domain.Attendance, error) {
	from, to := dayBounds(at)
	query := `
		SELECT * FROM attendance
		WHERE team_id = $tid AND uid = $uid AND datetime >= $from AND datetime < $to
	`
	return QueryOne[domain.Attendance](ctx, s.db, query, map[string]any{
		"tid": tid, "uid": uid, "from": from, "to": to,
	})
}

// ListByDay returns all of the team's check-ins for the day containing at.
func (s *AttendanceStore) ListByDay(ctx context.Context, tid int64, at time.Time) ([]*domain.Attendance, error) {
	from, to := dayBounds(at)
	query := `
		SELECT * FROM attendance
		WHERE team_id = $tid AND datetime >= $from AND datetime < $to
		ORDER BY datetime
	`
	return Query[*domain.Attendance](ctx, s.db, query, map[string]any{
		"tid": tid, "from": from, "to": to,
	})
}

// SummarizeDay aggregates the team's check-ins for the day containing at.
func (s *AttendanceStore) SummarizeDay(ctx context.Context, tid int64, at time.Time) (*domain.AttendanceSummary, error) {
	records, err := s.ListByDay(ctx, tid, at)
	if err != nil {
		return nil, err
	}

	summary := &domain.AttendanceSummary{Present: len(records)}
	for _, r := range records {
		if r.Punctual {
			summary.Punctual++
		}
	}
	return summary, nil
}

// dayBounds returns the half-open [midnight, next midnight) range of the day
// containing at, in at's location.
func dayBounds(at time.Time) (time.Time, time.Time) {
	from := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	return from, from.AddDate(0, 0, 1)
}
