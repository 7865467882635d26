package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/domain"
)

// paramInt64 parses a numeric path parameter.
func paramInt64(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, badRequest("invalid " + name)
	}
	return v, nil
}

// paramQueryInt64 parses a numeric query parameter value.
func paramQueryInt64(value string) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, badRequest("invalid numeric parameter")
	}
	return v, nil
}

// requireTeamMember loads the team and checks that uid belongs to it.
func requireTeamMember(ctx context.Context, teams domain.TeamRepository, tid, uid int64) (*domain.Team, error) {
	team, err := teams.GetByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if !team.HasMember(uid) {
		return nil, domain.ErrForbidden
	}
	return team, nil
}

// requireTeamLeader loads the team and checks that uid holds the leader role.
func requireTeamLeader(ctx context.Context, teams domain.TeamRepository, tid, uid int64) (*domain.Team, error) {
	team, err := teams.GetByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if team.Leader != uid {
		return nil, domain.ErrForbidden
	}
	return team, nil
}

// checkWindow validates an attendance window: both bounds inside one day and
// the start strictly before the end.
func checkWindow(checkS, checkE int) error {
	if checkS < 0 || checkE < 0 {
		return badRequest("check window must not be negative")
	}
	if checkS >= 86400 || checkE >= 86400 {
		return badRequest("check window must fit within one day")
	}
	if checkS >= checkE {
		return badRequest("check window must open before it closes")
	}
	return nil
}
