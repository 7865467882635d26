package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// QuestionnaireStore implements domain.QuestionnaireRepository on SurrealDB.
// Questions and options are embedded in the questionnaire document.
type QuestionnaireStore struct {
	db *surrealdb.DB
}

// NewQuestionnaireStore creates a new questionnaire store.
func NewQuestionnaireStore(db *surrealdb.DB) *QuestionnaireStore {
	return &QuestionnaireStore{db: db}
}

// Create inserts a new questionnaire with its embedded questions.
func (s *QuestionnaireStore) Create(ctx context.Context, q *domain.Questionnaire) (*domain.Questionnaire, error) {
	qid, err := NextID(ctx, s.db, "questionnaire")
	if err != nil {
		return nil, err
	}

	query := "CREATE type::thing('questionnaire', $qid) CONTENT $data"
	created, err := QueryOne[domain.Questionnaire](ctx, s.db, query, map[string]any{
		"qid":  qid,
		"data": q,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create questionnaire returned no record")
	}
	return created, nil
}

// List returns one page of the team's questionnaires, newest first.
func (s *QuestionnaireStore) List(ctx context.Context, teamID int64, page, perPage int) (*domain.QuestionnairePage, error) {
	countQuery := "SELECT count() AS count FROM questionnaire WHERE team_id = $tid GROUP ALL"
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
		SELECT * FROM questionnaire WHERE team_id = $tid
		ORDER BY datetime DESC LIMIT $limit START $start
	`
	items, err := Query[*domain.Questionnaire](ctx, s.db, listQuery, map[string]any{
		"tid":   teamID,
		"limit": perPage,
		"start": (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}

	return &domain.QuestionnairePage{
		Pages:          pageCount(total, perPage),
		Total:          total,
		Questionnaires: items,
	}, nil
}
