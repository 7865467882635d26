package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/pubsub"
)

// Shared in-memory fakes for handler tests.

func testUser(uid int64, username string) *domain.User {
	rid := surrealmodels.NewRecordID("user", uid)
	return &domain.User{ID: &rid, Username: username, Name: username}
}

func testTeam(tid, leader int64, members ...int64) *domain.Team {
	rid := surrealmodels.NewRecordID("team", tid)
	return &domain.Team{
		ID:      &rid,
		Leader:  leader,
		Name:    "team",
		CheckS:  9 * 3600,
		CheckE:  10 * 3600,
		InvCode: "aaaaaaaaaaaaaaaa",
		Members: members,
	}
}

type fakeUsers struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*domain.User), nextID: 100}
	for _, u := range users {
		f.users[u.UID()] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	f.nextID++
	rid := surrealmodels.NewRecordID("user", f.nextID)
	user.ID = &rid
	f.users[f.nextID] = user
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, uid int64) (*domain.User, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) UpdateName(_ context.Context, uid int64, name string) (*domain.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Name = name
	return u, nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, uid int64, ext string) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrNotFound
	}
	u.Avatar = ext
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, uid int64, hash string) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeTeams struct {
	teams map[int64]*domain.Team
}

func newFakeTeams(teams ...*domain.Team) *fakeTeams {
	f := &fakeTeams{teams: make(map[int64]*domain.Team)}
	for _, t := range teams {
		f.teams[t.TID()] = t
	}
	return f
}

func (f *fakeTeams) Create(_ context.Context, team *domain.Team) (*domain.Team, error) {
	rid := surrealmodels.NewRecordID("team", int64(len(f.teams)+1))
	team.ID = &rid
	team.InvCode = "bbbbbbbbbbbbbbbb"
	f.teams[team.TID()] = team
	return team, nil
}

func (f *fakeTeams) GetByID(_ context.Context, tid int64) (*domain.Team, error) {
	if t, ok := f.teams[tid]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTeams) Update(ctx context.Context, tid int64, update domain.TeamUpdate) (*domain.Team, error) {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Desc != nil {
		t.Desc = *update.Desc
	}
	if update.CheckS != nil {
		t.CheckS = *update.CheckS
	}
	if update.CheckE != nil {
		t.CheckE = *update.CheckE
	}
	return t, nil
}

func (f *fakeTeams) Delete(_ context.Context, tid int64) error {
	delete(f.teams, tid)
	return nil
}

func (f *fakeTeams) AddMember(ctx context.Context, tid, uid int64) error {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	if !t.HasMember(uid) {
		t.Members = append(t.Members, uid)
	}
	return nil
}

func (f *fakeTeams) RemoveMember(ctx context.Context, tid, uid int64) error {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	members := t.Members[:0]
	for _, m := range t.Members {
		if m != uid {
			members = append(members, m)
		}
	}
	t.Members = members
	return nil
}

func (f *fakeTeams) TransferLeader(ctx context.Context, tid, uid int64) error {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	t.Leader = uid
	return nil
}

func (f *fakeTeams) RenewInvCode(ctx context.Context, tid int64) (string, error) {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return "", err
	}
	t.InvCode = "cccccccccccccccc"
	return t.InvCode, nil
}

func (f *fakeTeams) GetByInvCode(_ context.Context, code string) (*domain.Team, error) {
	for _, t := range f.teams {
		if t.InvCode == code {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTeams) ListIDsByMember(_ context.Context, uid int64) ([]int64, error) {
	var ids []int64
	for _, t := range f.teams {
		if t.HasMember(uid) {
			ids = append(ids, t.TID())
		}
	}
	return ids, nil
}

func (f *fakeTeams) IsMember(ctx context.Context, tid, uid int64) (bool, error) {
	t, err := f.GetByID(ctx, tid)
	if err != nil {
		return false, nil
	}
	return t.HasMember(uid), nil
}

type recordingPublisher struct {
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// newTestContext builds an echo context with the validator installed and the
// given user authenticated.
func newTestContext(t *testing.T, method, path string, body any, query url.Values, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	e := echo.New()
	e.Validator = NewValidator()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	return c, rec
}

// newMultipartContext builds an echo context around a multipart form with
// the given fields and one file part. fileField may be empty to omit the
// file.
func newMultipartContext(t *testing.T, method, path string, fields map[string]string, fileField, filename, fileContent string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()

	e := echo.New()
	e.Validator = NewValidator()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	return c, rec
}

// decodeEnvelope parses the recorded response body.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// dataBytes re-encodes the envelope's data for decoding into a typed DTO.
func dataBytes(t *testing.T, env Envelope) []byte {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	return raw
}
