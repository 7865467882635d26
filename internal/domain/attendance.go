package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Attendance records a member's daily check-in. Punctual is decided against
// the team's check window at the moment of check-in so that a later change
// to the window does not rewrite history.
type Attendance struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	UID      int64                   `json:"uid"`
	Datetime time.Time               `json:"datetime"`
	Punctual bool                    `json:"punctual"`
	TeamID   int64                   `json:"team_id"`
}

// AttendanceSummary is the aggregate view shown to regular members.
type AttendanceSummary struct {
	Present  int `json:"present"`
	Punctual int `json:"punctual"`
}

// AttendanceRepository defines the contract for attendance storage operations.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *Attendance) (*Attendance, error)
	// FindByDay returns the user's record for the day containing at, if any.
	FindByDay(ctx context.Context, tid, uid int64, at time.Time) (*Attendance, error)
	// ListByDay returns all of the team's records for the day containing at.
	ListByDay(ctx context.Context, tid int64, at time.Time) ([]*Attendance, error)
	// SummarizeDay aggregates the team's records for the day containing at.
	SummarizeDay(ctx context.Context, tid int64, at time.Time) (*AttendanceSummary, error)
}
