package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
type User struct {
	ID           *surrealmodels.RecordID `json:"id,omitempty"`
	Email        string                  `json:"email,omitempty"`
	Username     string                  `json:"username"`
	PasswordHash string                  `json:"password_hash,omitempty"`
	Name         string                  `json:"name,omitempty"`
	Avatar       string                  `json:"avatar,omitempty"`
}

// UID returns the numeric identifier of the user record, or 0 when the
// record has not been persisted yet.
func (u *User) UID() int64 {
	if u.ID == nil {
		return 0
	}
	return recordInt(u.ID)
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, uid int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, uid int64, name string) (*User, error)
	UpdatePassword(ctx context.Context, uid int64, passwordHash string) error
	// UpdateAvatar records the file extension of the user's stored avatar.
	UpdateAvatar(ctx context.Context, uid int64, ext string) error
}

// recordInt extracts the numeric part of a SurrealDB record ID. Records in
// this application always use integer IDs (user:7, team:42) so the chat
// protocol's integer uid/tid map onto them directly.
func recordInt(id *surrealmodels.RecordID) int64 {
	switch v := id.ID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
