package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// TeamLogStore implements domain.TeamLogRepository on SurrealDB.
type TeamLogStore struct {
	db *surrealdb.DB
}

// NewTeamLogStore creates a new activity log store.
func NewTeamLogStore(db *surrealdb.DB) *TeamLogStore {
	return &TeamLogStore{db: db}
}

// Create appends one activity row.
func (s *TeamLogStore) Create(ctx context.Context, entry *domain.TeamLog) error {
	lid, err := NextID(ctx, s.db, "team_log")
	if err != nil {
		return err
	}

	query := "CREATE type::thing('team_log', $lid) CONTENT $data"
	if err := Execute(ctx, s.db, query, map[string]any{"lid": lid, "data": entry}); err != nil {
		return fmt.Errorf("failed to create team log: %w", err)
	}
	return nil
}

// List returns one page of the team's activity feed, newest first.
func (s *TeamLogStore) List(ctx context.Context, teamID int64, page, perPage int) (*domain.TeamLogPage, error) {
	countQuery := "SELECT count() AS count FROM team_log WHERE team_id = $tid GROUP ALL"
	row, err := QueryOne[countRow](ctx, s.db, countQuery, map[string]any{"tid": teamID})
	if err != nil {
		return nil, err
	}
	total := 0
	if row != nil {
		total = row.Count
	}

	page, perPage = normalizePage(page, perPage)
	listQuery := `
		SELECT * FROM team_log WHERE team_id = $tid
		ORDER BY datetime DESC LIMIT $limit START $start
	`
	logs, err := Query[*domain.TeamLog](ctx, s.db, listQuery, map[string]any{
		"tid":   teamID,
		"limit": perPage,
		"start": (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}

	return &domain.TeamLogPage{
		Pages: pageCount(total, perPage),
		Total: total,
		Logs:  logs,
	}, nil
}
