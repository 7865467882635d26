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

// AttendanceHandler handles daily check-ins and their reporting.
type AttendanceHandler struct {
	attendances domain.AttendanceRepository
	teams       domain.TeamRepository
	publisher   pubsub.Publisher

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendances domain.AttendanceRepository, teams domain.TeamRepository, publisher pubsub.Publisher) *AttendanceHandler {
	return &AttendanceHandler{
		attendances: attendances,
		teams:       teams,
		publisher:   publisher,
		now:         time.Now,
	}
}

// CheckIn records the caller's attendance for today. One record per member
// per day; rejected before the window opens; punctual while the window is
// still open.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team, err := requireTeamMember(ctx, h.teams, tid, user.UID())
	if err != nil {
		return err
	}

	now := h.now()

	existing, err := h.attendances.FindByDay(ctx, tid, user.UID(), now)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyCheckedIn
	}

	secs := secondsOfDay(now)
	if secs < team.CheckS {
		return domain.ErrCheckNotOpen
	}

	attendance := &domain.Attendance{
		UID:      user.UID(),
		Datetime: now,
		Punctual: secs <= team.CheckE,
		TeamID:   tid,
	}
	created, err := h.attendances.Create(ctx, attendance)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, user.UID(),
		fmt.Sprintf("%s checked in", user.Name))

	return ok(c, http.StatusCreated, newAttendanceResponse(created))
}

// Report returns one day's attendance. Members see the aggregate; the leader
// may request the full listing with spec=true; anyone may request their own
// record with self=true.
func (h *AttendanceHandler) Report(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	day, err := time.Parse(dateLayout, c.QueryParam("date"))
	if err != nil {
		return badRequest("invalid date")
	}
	self, _ := strconv.ParseBool(c.QueryParam("self"))
	spec, _ := strconv.ParseBool(c.QueryParam("spec"))

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team, err := requireTeamMember(ctx, h.teams, tid, user.UID())
	if err != nil {
		return err
	}

	switch {
	case self:
		record, err := h.attendances.FindByDay(ctx, tid, user.UID(), day)
		if err != nil {
			return err
		}
		if record == nil {
			return ok(c, http.StatusOK, map[string]any{})
		}
		return ok(c, http.StatusOK, newAttendanceResponse(record))

	case spec && user.UID() == team.Leader:
		records, err := h.attendances.ListByDay(ctx, tid, day)
		if err != nil {
			return err
		}
		resp := make([]AttendanceResponse, 0, len(records))
		for _, a := range records {
			resp = append(resp, newAttendanceResponse(a))
		}
		return ok(c, http.StatusOK, resp)

	default:
		summary, err := h.attendances.SummarizeDay(ctx, tid, day)
		if err != nil {
			return err
		}
		return ok(c, http.StatusOK, summary)
	}
}

// secondsOfDay converts a wall-clock instant to seconds since local midnight.
func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
