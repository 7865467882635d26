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

const dateLayout = "2006-01-02"

// ScheduleHandler handles team calendar entries.
type ScheduleHandler struct {
	schedules domain.ScheduleRepository
	teams     domain.TeamRepository
	publisher pubsub.Publisher
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules domain.ScheduleRepository, teams domain.TeamRepository, publisher pubsub.Publisher) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, teams: teams, publisher: publisher}
}

// Create publishes a calendar entry. Leader only.
func (h *ScheduleHandler) Create(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	var req CreateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start, _ := time.Parse(dateLayout, req.Start)
	end, _ := time.Parse(dateLayout, req.End)
	if end.Before(start) {
		return badRequest("schedule must not end before it starts")
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamLeader(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	schedule := &domain.Schedule{
		Desc:    req.Desc,
		Urgency: req.Urgency,
		Start:   start,
		End:     end,
		TeamID:  tid,
	}
	created, err := h.schedules.Create(ctx, schedule)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, user.UID(),
		fmt.Sprintf("%s published a schedule: %s", user.Name, created.Desc))

	return ok(c, http.StatusCreated, newScheduleResponse(created))
}

// ListMonth returns the team's schedules whose span intersects the given
// month. Member only.
func (h *ScheduleHandler) ListMonth(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 1 {
		return badRequest("invalid year")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return badRequest("invalid month")
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamMember(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	schedules, err := h.schedules.ListOverlapping(ctx, tid, from, to)
	if err != nil {
		return err
	}

	resp := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, newScheduleResponse(s))
	}
	return ok(c, http.StatusOK, resp)
}

// Update modifies a calendar entry. Leader of the owning team only.
func (h *ScheduleHandler) Update(c echo.Context) error {
	sid, err := paramInt64(c, "sid")
	if err != nil {
		return err
	}

	var req UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	schedule, err := h.schedules.GetByID(ctx, sid)
	if err != nil {
		return err
	}
	if _, err := requireTeamLeader(ctx, h.teams, schedule.TeamID, user.UID()); err != nil {
		return err
	}

	update := domain.ScheduleUpdate{Desc: req.Desc, Urgency: req.Urgency}
	if req.Start != nil {
		start, _ := time.Parse(dateLayout, *req.Start)
		update.Start = &start
	}
	if req.End != nil {
		end, _ := time.Parse(dateLayout, *req.End)
		update.End = &end
	}

	updated, err := h.schedules.Update(ctx, sid, update)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, schedule.TeamID, user.UID(),
		fmt.Sprintf("%s updated a schedule: %s", user.Name, updated.Desc))

	return ok(c, http.StatusOK, newScheduleResponse(updated))
}

// Delete removes a calendar entry. Leader of the owning team only.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	sid, err := paramInt64(c, "sid")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	schedule, err := h.schedules.GetByID(ctx, sid)
	if err != nil {
		return err
	}
	if _, err := requireTeamLeader(ctx, h.teams, schedule.TeamID, user.UID()); err != nil {
		return err
	}

	if err := h.schedules.Delete(ctx, sid); err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, schedule.TeamID, user.UID(),
		fmt.Sprintf("%s removed a schedule: %s", user.Name, schedule.Desc))

	return ok(c, http.StatusOK, nil)
}
