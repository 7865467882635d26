package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// TeamLog is one line of a team's activity feed. Rows are produced by the
// activity subscriber from events on the message bus, never written directly
// by request handlers.
type TeamLog struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	UID      int64                   `json:"uid"`
	Desc     string                  `json:"desc"`
	Datetime time.Time               `json:"datetime"`
	TeamID   int64                   `json:"team_id"`
}

// TeamLogPage is one page of a team's activity feed, newest first.
type TeamLogPage struct {
	Pages int        `json:"pages"`
	Total int        `json:"total"`
	Logs  []*TeamLog `json:"logs"`
}

// TeamLogRepository defines the contract for activity log storage.
type TeamLogRepository interface {
	Create(ctx context.Context, entry *TeamLog) error
	List(ctx context.Context, teamID int64, page, perPage int) (*TeamLogPage, error)
}
