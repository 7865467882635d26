package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/domain"
)

// API response codes. Zero means success; non-zero codes group failures the
// way clients already understand them: 1xxx authentication and authorization,
// 2xxx request problems, 3xxx server faults.
const (
	CodeOK                = 0
	CodeAuthFailed        = 1000
	CodeForbidden         = 1001
	CodeIncorrectPassword = 1003
	CodeNotFound          = 2001
	CodeBadRequest        = 2002
	CodeServerError       = 3001
)

// Envelope is the uniform response body of the v1 API.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ok writes a success envelope with the given HTTP status.
func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Code: CodeOK, Data: data})
}

// UserBrief is the compact user shape embedded in team member lists.
type UserBrief struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// UserResponse is the full user shape. TeamIDs lists every team the user
// belongs to; the password hash never leaves the server.
type UserResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	TeamIDs  []int64 `json:"team_id"`
}

func newUserResponse(u *domain.User, teamIDs []int64) UserResponse {
	if teamIDs == nil {
		teamIDs = []int64{}
	}
	return UserResponse{
		ID:       u.UID(),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		TeamIDs:  teamIDs,
	}
}

// TokenResponse carries a fresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TeamResponse is the team shape with its member list expanded. The invite
// code is only included for the leader.
type TeamResponse struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Desc     string      `json:"desc"`
	LeaderID int64       `json:"leader_id"`
	CheckS   int         `json:"check_s"`
	CheckE   int         `json:"check_e"`
	InvCode  string      `json:"inv_code,omitempty"`
	Members  []UserBrief `json:"members"`
}

func newTeamResponse(t *domain.Team, members []UserBrief, includeInvCode bool) TeamResponse {
	if members == nil {
		members = []UserBrief{}
	}
	resp := TeamResponse{
		ID:       t.TID(),
		Name:     t.Name,
		Desc:     t.Desc,
		LeaderID: t.Leader,
		CheckS:   t.CheckS,
		CheckE:   t.CheckE,
		Members:  members,
	}
	if includeInvCode {
		resp.InvCode = t.InvCode
	}
	return resp
}

// ScheduleResponse is the calendar entry shape.
type ScheduleResponse struct {
	ID      int64     `json:"id"`
	Desc    string    `json:"desc"`
	Urgency int       `json:"urgency"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

func newScheduleResponse(s *domain.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:      s.SID(),
		Desc:    s.Desc,
		Urgency: s.Urgency,
		Start:   s.Start,
		End:     s.End,
	}
}

// AttendanceResponse is one check-in record.
type AttendanceResponse struct {
	UID      int64     `json:"uid"`
	Datetime time.Time `json:"datetime"`
	Punctual bool      `json:"punctual"`
	TID      int64     `json:"tid"`
}

func newAttendanceResponse(a *domain.Attendance) AttendanceResponse {
	return AttendanceResponse{
		UID:      a.UID,
		Datetime: a.Datetime,
		Punctual: a.Punctual,
		TID:      a.TeamID,
	}
}

// TaskResponse is the task shape shown in listings and after submission.
type TaskResponse struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Desc     string           `json:"desc"`
	Assignee int64            `json:"assignee"`
	Datetime time.Time        `json:"datetime"`
	Deadline time.Time        `json:"deadline"`
	Finish   bool             `json:"finish"`
	Archives []domain.Archive `json:"archives,omitempty"`
}

func newTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:       t.TID(),
		Title:    t.Title,
		Desc:     t.Desc,
		Assignee: t.Assignee,
		Datetime: t.Datetime,
		Deadline: t.Deadline,
		Finish:   t.Finish,
		Archives: t.Archives,
	}
}

// PageResponse is the shared shape of paginated listings.
type PageResponse struct {
	Pages int `json:"pages"`
	Total int `json:"total"`
	Items any `json:"items"`
}

// badRequest builds the 400 error carried through the central error handler.
func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}
