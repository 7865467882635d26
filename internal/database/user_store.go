package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// UserStore implements domain.UserRepository on SurrealDB.
type UserStore struct {
	db *surrealdb.DB
}

// NewUserStore creates a new user store.
func NewUserStore(db *surrealdb.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user record, allocating the next numeric user ID.
// Usernames are unique; a duplicate yields domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := s.GetByUsername(ctx, user.Username)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	uid, err := NextID(ctx, s.db, "user")
	if err != nil {
		return nil, err
	}

	query := "CREATE type::thing('user', $uid) CONTENT $data"
	created, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{
		"uid":  uid,
		"data": user,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create user returned no record")
	}
	return created, nil
}

// GetByID retrieves a user by their numeric ID.
func (s *UserStore) GetByID(ctx context.Context, uid int64) (*domain.User, error) {
	query := "SELECT * FROM type::thing('user', $uid)"
	user, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// GetByUsername retrieves a user by their unique username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE username = $username"
	user, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE email = $email"
	user, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateName changes the user's display name.
func (s *UserStore) UpdateName(ctx context.Context, uid int64, name string) (*domain.User, error) {
	query := "UPDATE type::thing('user', $uid) SET name = $name RETURN AFTER"
	user, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{"uid": uid, "name": name})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateAvatar records the file extension of the user's stored avatar.
func (s *UserStore) UpdateAvatar(ctx context.Context, uid int64, ext string) error {
	query := "UPDATE type::thing('user', $uid) SET avatar = $ext"
	return Execute(ctx, s.db, query, map[string]any{"uid": uid, "ext": ext})
}

// UpdatePassword replaces the user's password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, uid int64, passwordHash string) error {
	query := "UPDATE type::thing('user', $uid) SET password_hash = $hash"
	return Execute(ctx, s.db, query, map[string]any{"uid": uid, "hash": passwordHash})
}
