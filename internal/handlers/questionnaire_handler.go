package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/activity"
	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/pubsub"
)

// QuestionnaireHandler handles team surveys.
type QuestionnaireHandler struct {
	questionnaires domain.QuestionnaireRepository
	teams          domain.TeamRepository
	publisher      pubsub.Publisher
	perPage        int
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler.
func NewQuestionnaireHandler(questionnaires domain.QuestionnaireRepository, teams domain.TeamRepository, publisher pubsub.Publisher, perPage int) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaires: questionnaires,
		teams:          teams,
		publisher:      publisher,
		perPage:        perPage,
	}
}

// QuestionnaireResponse is the survey shape with its embedded questions.
type QuestionnaireResponse struct {
	ID        int64              `json:"id"`
	Title     string             `json:"title"`
	Desc      string             `json:"desc"`
	Datetime  time.Time          `json:"datetime"`
	Deadline  time.Time          `json:"deadline"`
	Questions []domain.QQuestion `json:"questions"`
}

func newQuestionnaireResponse(q *domain.Questionnaire) QuestionnaireResponse {
	return QuestionnaireResponse{
		ID:        q.QID(),
		Title:     q.Title,
		Desc:      q.Desc,
		Datetime:  q.Datetime,
		Deadline:  q.Deadline,
		Questions: q.Questions,
	}
}

// Create publishes a survey with its questions embedded. Leader only.
// Question and option IDs are assigned by position.
func (h *QuestionnaireHandler) Create(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	var req CreateQuestionnaireRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamLeader(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	questions := make([]domain.QQuestion, 0, len(req.Questions))
	for qi, q := range req.Questions {
		options := make([]domain.QOption, 0, len(q.Options))
		for oi, op := range q.Options {
			options = append(options, domain.QOption{OID: oi + 1, Desc: op.Desc})
		}
		questions = append(questions, domain.QQuestion{
			QID:     qi + 1,
			Desc:    q.Desc,
			Type:    q.Type,
			Options: options,
		})
	}

	questionnaire := &domain.Questionnaire{
		Title:     req.Title,
		Desc:      req.Desc,
		Datetime:  time.Now().UTC(),
		Deadline:  req.Deadline,
		TeamID:    tid,
		Questions: questions,
	}
	created, err := h.questionnaires.Create(ctx, questionnaire)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, user.UID(),
		fmt.Sprintf("%s published a questionnaire: %s", user.Name, created.Title))

	return ok(c, http.StatusCreated, newQuestionnaireResponse(created))
}

// List returns the team's surveys, newest first, paginated. Member only.
func (h *QuestionnaireHandler) List(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return badRequest("invalid page")
		}
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamMember(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	result, err := h.questionnaires.List(ctx, tid, page, h.perPage)
	if err != nil {
		return err
	}

	items := make([]QuestionnaireResponse, 0, len(result.Questionnaires))
	for _, q := range result.Questionnaires {
		items = append(items, newQuestionnaireResponse(q))
	}
	return ok(c, http.StatusOK, PageResponse{Pages: result.Pages, Total: result.Total, Items: items})
}
