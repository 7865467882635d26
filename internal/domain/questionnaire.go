package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// QOption is one choice of a questionnaire question.
type QOption struct {
	OID  int    `json:"oid"`
	Desc string `json:"desc"`
}

// QQuestion is a single question. Type distinguishes single-choice,
// multi-choice and free-text; free-text questions carry no options.
type QQuestion struct {
	QID     int       `json:"qid"`
	Desc    string    `json:"desc"`
	Type    int       `json:"type"`
	Options []QOption `json:"options,omitempty"`
}

// Questionnaire is a survey published by the team leader. Questions are
// embedded documents rather than separate records.
type Questionnaire struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Title     string                  `json:"title"`
	Desc      string                  `json:"desc,omitempty"`
	Datetime  time.Time               `json:"datetime"`
	Deadline  time.Time               `json:"deadline"`
	TeamID    int64                   `json:"team_id"`
	Questions []QQuestion             `json:"questions"`
}

// QID returns the numeric identifier of the questionnaire record.
func (q *Questionnaire) QID() int64 {
	if q.ID == nil {
		return 0
	}
	return recordInt(q.ID)
}

// QuestionnairePage is one page of a questionnaire listing.
type QuestionnairePage struct {
	Pages          int              `json:"pages"`
	Total          int              `json:"total"`
	Questionnaires []*Questionnaire `json:"questionnaires"`
}

// QuestionnaireRepository defines the contract for questionnaire storage.
type QuestionnaireRepository interface {
	Create(ctx context.Context, q *Questionnaire) (*Questionnaire, error)
	List(ctx context.Context, teamID int64, page, perPage int) (*QuestionnairePage, error)
}
