package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Team is a collaboration group. The leader is a regular member who also
// holds the leader role; leadership is tracked by uid rather than a separate
// association. CheckS and CheckE bound the daily attendance window, expressed
// as seconds since midnight.
type Team struct {
	ID      *surrealmodels.RecordID `json:"id,omitempty"`
	Leader  int64                   `json:"leader"`
	Name    string                  `json:"name"`
	Desc    string                  `json:"desc,omitempty"`
	CheckS  int                     `json:"check_s"`
	CheckE  int                     `json:"check_e"`
	InvCode string                  `json:"inv_code,omitempty"`
	Members []int64                 `json:"members"`
}

// TID returns the numeric identifier of the team record.
func (t *Team) TID() int64 {
	if t.ID == nil {
		return 0
	}
	return recordInt(t.ID)
}

// HasMember reports whether uid is in the team's member list.
func (t *Team) HasMember(uid int64) bool {
	for _, m := range t.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// TeamUpdate carries the optional fields of a team PATCH. Nil means
// "leave unchanged".
type TeamUpdate struct {
	Name   *string
	Desc   *string
	CheckS *int
	CheckE *int
}

// TeamRepository defines the contract for team data storage operations.
// IsMember doubles as the membership oracle consumed by the chat relay.
type TeamRepository interface {
	Create(ctx context.Context, team *Team) (*Team, error)
	GetByID(ctx context.Context, tid int64) (*Team, error)
	Update(ctx context.Context, tid int64, update TeamUpdate) (*Team, error)
	Delete(ctx context.Context, tid int64) error
	AddMember(ctx context.Context, tid, uid int64) error
	RemoveMember(ctx context.Context, tid, uid int64) error
	TransferLeader(ctx context.Context, tid, uid int64) error
	RenewInvCode(ctx context.Context, tid int64) (string, error)
	GetByInvCode(ctx context.Context, code string) (*Team, error)
	// ListIDsByMember returns the IDs of every team the user belongs to.
	ListIDsByMember(ctx context.Context, uid int64) ([]int64, error)
	IsMember(ctx context.Context, tid, uid int64) (bool, error)
}
