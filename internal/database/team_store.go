package database

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// TeamStore implements domain.TeamRepository on SurrealDB. Its IsMember
// method is the membership oracle consumed by the chat relay.
type TeamStore struct {
	db *surrealdb.DB
}

// NewTeamStore creates a new team store.
func NewTeamStore(db *surrealdb.DB) *TeamStore {
	return &TeamStore{db: db}
}

// Create inserts a new team. The caller is expected to have set Leader and
// Members (the creator joins as both); the invite code is generated here.
func (s *TeamStore) Create(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	tid, err := NextID(ctx, s.db, "team")
	if err != nil {
		return nil, err
	}

	code, err := s.freshInvCode(ctx)
	if err != nil {
		return nil, err
	}
	team.InvCode = code

	query := "CREATE type::thing('team', $tid) CONTENT $data"
	created, err := QueryOne[domain.Team](ctx, s.db, query, map[string]any{
		"tid":  tid,
		"data": team,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create team returned no record")
	}
	return created, nil
}

// GetByID retrieves a team by its numeric ID.
func (s *TeamStore) GetByID(ctx context.Context, tid int64) (*domain.Team, error) {
	query := "SELECT * FROM type::thing('team', $tid)"
	team, err := QueryOne[domain.Team](ctx, s.db, query, map[string]any{"tid": tid})
	if err != nil {
		return nil, err
	}
	if team == nil || team.ID == nil {
		return nil, domain.ErrNotFound
	}
	return team, nil
}

// Update merges the set fields of update into the team record.
func (s *TeamStore) Update(ctx context.Context, tid int64, update domain.TeamUpdate) (*domain.Team, error) {
	data := map[string]any{}
	if update.Name != nil {
		data["name"] = *update.Name
	}
	if update.Desc != nil {
		data["desc"] = *update.Desc
	}
	if update.CheckS != nil {
		data["check_s"] = *update.CheckS
	}
	if update.CheckE != nil {
		data["check_e"] = *update.CheckE
	}
	if len(data) == 0 {
		return s.GetByID(ctx, tid)
	}

	query := "UPDATE type::thing('team', $tid) MERGE $data RETURN AFTER"
	team, err := QueryOne[domain.Team](ctx, s.db, query, map[string]any{"tid": tid, "data": data})
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, domain.ErrNotFound
	}
	return team, nil
}

// Delete dissolves a team and cascades to its dependent records.
func (s *TeamStore) Delete(ctx context.Context, tid int64) error {
	query := `
		DELETE FROM schedule WHERE team_id = $tid;
		DELETE FROM attendance WHERE team_id = $tid;
		DELETE FROM task WHERE team_id = $tid;
		DELETE FROM questionnaire WHERE team_id = $tid;
		DELETE FROM team_log WHERE team_id = $tid;
		DELETE type::thing('team', $tid);
	`
	return Execute(ctx, s.db, query, map[string]any{"tid": tid})
}

// AddMember adds uid to the team's member list. Idempotent.
func (s *TeamStore) AddMember(ctx context.Context, tid, uid int64) error {
	query := "UPDATE type::thing('team', $tid) SET members = array::union(members, [$uid])"
	return Execute(ctx, s.db, query, map[string]any{"tid": tid, "uid": uid})
}

// RemoveMember removes uid from the team's member list. No-op if absent.
func (s *TeamStore) RemoveMember(ctx context.Context, tid, uid int64) error {
	query := "UPDATE type::thing('team', $tid) SET members -= $uid"
	return Execute(ctx, s.db, query, map[string]any{"tid": tid, "uid": uid})
}

// TransferLeader hands the leader role to uid. The caller is responsible for
// checking that uid is a member.
func (s *TeamStore) TransferLeader(ctx context.Context, tid, uid int64) error {
	query := "UPDATE type::thing('team', $tid) SET leader = $uid"
	return Execute(ctx, s.db, query, map[string]any{"tid": tid, "uid": uid})
}

// RenewInvCode rotates the team's invite code and returns the new one.
func (s *TeamStore) RenewInvCode(ctx context.Context, tid int64) (string, error) {
	code, err := s.freshInvCode(ctx)
	if err != nil {
		return "", err
	}

	query := "UPDATE type::thing('team', $tid) SET inv_code = $code"
	if err := Execute(ctx, s.db, query, map[string]any{"tid": tid, "code": code}); err != nil {
		return "", err
	}
	return code, nil
}

// GetByInvCode retrieves the team holding the given invite code.
func (s *TeamStore) GetByInvCode(ctx context.Context, code string) (*domain.Team, error) {
	query := "SELECT * FROM team WHERE inv_code = $code"
	team, err := QueryOne[domain.Team](ctx, s.db, query, map[string]any{"code": code})
	if err != nil {
		return nil, err
	}
	if team == nil || team.ID == nil {
		return nil, domain.ErrNotFound
	}
	return team, nil
}

// ListIDsByMember returns the IDs of every team the user belongs to.
func (s *TeamStore) ListIDsByMember(ctx context.Context, uid int64) ([]int64, error) {
	query := "SELECT VALUE meta::id(id) FROM team WHERE members CONTAINS $uid"
	ids, err := Query[int64](ctx, s.db, query, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsMember reports whether uid currently belongs to team tid. A missing team
// is simply "not a member".
func (s *TeamStore) IsMember(ctx context.Context, tid, uid int64) (bool, error) {
	query := "SELECT VALUE members CONTAINS $uid FROM type::thing('team', $tid)"
	result, err := QueryOne[bool](ctx, s.db, query, map[string]any{"tid": tid, "uid": uid})
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	return *result, nil
}

// freshInvCode generates a 16-character URL-safe invite code, retrying on
// the (vanishingly unlikely) collision with an existing team.
func (s *TeamStore) freshInvCode(ctx context.Context) (string, error) {
	for {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code := base64.RawURLEncoding.EncodeToString(buf)

		query := "SELECT VALUE id FROM team WHERE inv_code = $code"
		existing, err := QueryOne[any](ctx, s.db, query, map[string]any{"code": code})
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
}
