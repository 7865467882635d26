package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/activity"
	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/pubsub"
)

// TeamHandler handles team lifecycle and membership operations.
type TeamHandler struct {
	teams     domain.TeamRepository
	users     domain.UserRepository
	publisher pubsub.Publisher
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams domain.TeamRepository, users domain.UserRepository, publisher pubsub.Publisher) *TeamHandler {
	return &TeamHandler{teams: teams, users: users, publisher: publisher}
}

// Create makes a new team with the caller as both leader and first member.
func (h *TeamHandler) Create(c echo.Context) error {
	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := checkWindow(*req.CheckS, *req.CheckE); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team := &domain.Team{
		Leader:  user.UID(),
		Name:    req.Name,
		Desc:    req.Desc,
		CheckS:  *req.CheckS,
		CheckE:  *req.CheckE,
		Members: []int64{user.UID()},
	}
	created, err := h.teams.Create(ctx, team)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, created.TID(), user.UID(),
		fmt.Sprintf("%s created the team", user.Name))

	members, err := h.memberBriefs(ctx, created)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newTeamResponse(created, members, true))
}

// Get returns a team with its member list. The invite code is only shown to
// the leader.
func (h *TeamHandler) Get(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team, err := h.teams.GetByID(ctx, tid)
	if err != nil {
		return err
	}

	members, err := h.memberBriefs(ctx, team)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newTeamResponse(team, members, team.Leader == user.UID()))
}

// Action applies a membership change: 1 join, 2 leave, 3 transfer the leader
// role. The leader may operate on anyone; everyone else only on themselves.
// The leader cannot join or leave without transferring leadership first.
func (h *TeamHandler) Action(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	var req TeamActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	operator := middleware.CurrentUser(c)

	team, err := h.teams.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	target, err := h.users.GetByID(ctx, req.UID)
	if err != nil {
		return err
	}

	operatorID := operator.UID()
	targetID := target.UID()

	if operatorID == team.Leader && operatorID == targetID {
		return badRequest("leader must transfer the role before joining or leaving")
	}
	if operatorID != team.Leader && operatorID != targetID {
		return badRequest("cannot operate on other members")
	}

	joined := team.HasMember(targetID)
	var desc string
	switch {
	case req.Action == TeamActionJoin && !joined:
		err = h.teams.AddMember(ctx, tid, targetID)
		desc = fmt.Sprintf("%s joined the team", target.Name)
	case req.Action == TeamActionLeave && joined:
		err = h.teams.RemoveMember(ctx, tid, targetID)
		desc = fmt.Sprintf("%s left the team", target.Name)
	case req.Action == TeamActionTransfer && joined:
		err = h.teams.TransferLeader(ctx, tid, targetID)
		desc = fmt.Sprintf("%s became the team leader", target.Name)
	default:
		return badRequest("invalid action or conditions not met")
	}
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, operatorID, desc)

	team, err = h.teams.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	members, err := h.memberBriefs(ctx, team)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newTeamResponse(team, members, team.Leader == operatorID))
}

// Update applies leader-only field changes shifting the attendance window
// only if the combined result is still valid.
func (h *TeamHandler) Update(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	var req UpdateTeamRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team, err := requireTeamLeader(ctx, h.teams, tid, user.UID())
	if err != nil {
		return err
	}

	// Validate the window against the values that will end up stored.
	checkS, checkE := team.CheckS, team.CheckE
	if req.CheckS != nil {
		checkS = *req.CheckS
	}
	if req.CheckE != nil {
		checkE = *req.CheckE
	}
	if req.CheckS != nil || req.CheckE != nil {
		if err := checkWindow(checkS, checkE); err != nil {
			return err
		}
	}

	updated, err := h.teams.Update(ctx, tid, domain.TeamUpdate{
		Name:   req.Name,
		Desc:   req.Desc,
		CheckS: req.CheckS,
		CheckE: req.CheckE,
	})
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, user.UID(),
		fmt.Sprintf("%s updated the team settings", user.Name))

	members, err := h.memberBriefs(ctx, updated)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newTeamResponse(updated, members, true))
}

// Delete dissolves the team and everything attached to it. Leader only.
func (h *TeamHandler) Delete(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamLeader(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}
	if err := h.teams.Delete(ctx, tid); err != nil {
		return err
	}

	return ok(c, http.StatusOK, nil)
}

// RenewInvCode rotates the team's invite code. Leader only.
func (h *TeamHandler) RenewInvCode(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamLeader(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	code, err := h.teams.RenewInvCode(ctx, tid)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, map[string]string{"inv_code": code})
}

// JoinByCode adds the caller to the team holding the invite code.
func (h *TeamHandler) JoinByCode(c echo.Context) error {
	var req JoinByCodeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	team, err := h.teams.GetByInvCode(ctx, req.InvCode)
	if err != nil {
		return err
	}
	if !team.HasMember(user.UID()) {
		if err := h.teams.AddMember(ctx, team.TID(), user.UID()); err != nil {
			return err
		}
		activity.Record(ctx, h.publisher, team.TID(), user.UID(),
			fmt.Sprintf("%s joined the team by invitation", user.Name))
	}

	team, err = h.teams.GetByID(ctx, team.TID())
	if err != nil {
		return err
	}
	members, err := h.memberBriefs(ctx, team)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newTeamResponse(team, members, false))
}

// memberBriefs resolves the team's member IDs to compact user shapes.
// Members deleted out from under the team are skipped rather than failing
// the whole response.
func (h *TeamHandler) memberBriefs(ctx context.Context, team *domain.Team) ([]UserBrief, error) {
	briefs := make([]UserBrief, 0, len(team.Members))
	for _, uid := range team.Members {
		u, err := h.users.GetByID(ctx, uid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		briefs = append(briefs, UserBrief{ID: u.UID(), Username: u.Username, Name: u.Name})
	}
	return briefs, nil
}
