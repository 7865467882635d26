package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
)

// LogHandler serves the team activity feed.
type LogHandler struct {
	logs    domain.TeamLogRepository
	teams   domain.TeamRepository
	perPage int
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logs domain.TeamLogRepository, teams domain.TeamRepository, perPage int) *LogHandler {
	return &LogHandler{logs: logs, teams: teams, perPage: perPage}
}

// LogResponse is one activity feed line.
type LogResponse struct {
	UID      int64     `json:"uid"`
	Desc     string    `json:"desc"`
	Datetime time.Time `json:"datetime"`
}

// List returns the team's activity feed, newest first, paginated. Member only.
func (h *LogHandler) List(c echo.Context) error {
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

	result, err := h.logs.List(ctx, tid, page, h.perPage)
	if err != nil {
		return err
	}

	items := make([]LogResponse, 0, len(result.Logs))
	for _, entry := range result.Logs {
		items = append(items, LogResponse{UID: entry.UID, Desc: entry.Desc, Datetime: entry.Datetime})
	}
	return ok(c, http.StatusOK, PageResponse{Pages: result.Pages, Total: result.Total, Items: items})
}
