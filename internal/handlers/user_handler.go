package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/auth"
	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/storage"
	"github.com/zenigame/zenigame/internal/token"
)

// UserHandler handles account registration, token issuance and profile
// operations.
type UserHandler struct {
	users  domain.UserRepository
	teams  domain.TeamRepository
	tokens *token.Manager
	hasher *auth.PasswordHasher
	files  storage.FileStorage
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users domain.UserRepository, teams domain.TeamRepository, tokens *token.Manager, hasher *auth.PasswordHasher, files storage.FileStorage) *UserHandler {
	return &UserHandler{users: users, teams: teams, tokens: tokens, hasher: hasher, files: files}
}

// Register creates a new account. The display name defaults to the username.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	created, err := h.users.Create(c.Request().Context(), user)
	if err != nil {
		return err
	}

	return ok(c, http.StatusCreated, newUserResponse(created, nil))
}

// Token issues a fresh access and refresh token pair for the authenticated
// user. Refreshing is seamless: a valid refresh token passes the same Auth
// middleware and yields a new pair here.
func (h *UserHandler) Token(c echo.Context) error {
	user := middleware.CurrentUser(c)

	access, err := h.tokens.IssueAccessToken(user.UID())
	if err != nil {
		return err
	}
	refresh, err := h.tokens.IssueRefreshToken(user.UID())
	if err != nil {
		return err
	}

	return ok(c, http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh})
}

// Get looks a user up by id or username, defaulting to the caller.
func (h *UserHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var err error
	if id := c.QueryParam("id"); id != "" {
		var uid int64
		if uid, err = paramQueryInt64(id); err != nil {
			return err
		}
		if user, err = h.users.GetByID(ctx, uid); err != nil {
			return err
		}
	} else if username := c.QueryParam("username"); username != "" {
		if user, err = h.users.GetByUsername(ctx, username); err != nil {
			return err
		}
	}

	teamIDs, err := h.teams.ListIDsByMember(ctx, user.UID())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newUserResponse(user, teamIDs))
}

// Rename updates the caller's display name.
func (h *UserHandler) Rename(c echo.Context) error {
	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	updated, err := h.users.UpdateName(ctx, user.UID(), req.Name)
	if err != nil {
		return err
	}

	teamIDs, err := h.teams.ListIDsByMember(ctx, updated.UID())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, newUserResponse(updated, teamIDs))
}

// avatarPath names the stored avatar for a user. One file per user; a new
// upload with a different extension replaces the old one.
func avatarPath(uid int64, ext string) string {
	return fmt.Sprintf("avatar/%d.%s", uid, ext)
}

// UploadAvatar stores the caller's avatar from a multipart form.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return badRequest("avatar file is required")
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileHeader.Filename), "."))
	if ext == "" {
		return badRequest("avatar filename has no extension")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if user.Avatar != "" && user.Avatar != ext {
		if err := h.files.Delete(ctx, avatarPath(user.UID(), user.Avatar)); err != nil {
			return err
		}
	}
	if _, err := h.files.Save(ctx, avatarPath(user.UID(), ext), src); err != nil {
		return err
	}
	if err := h.users.UpdateAvatar(ctx, user.UID(), ext); err != nil {
		return err
	}

	return ok(c, http.StatusOK, map[string]string{
		"avatar": fmt.Sprintf("/api/v1/users/%d/avatar", user.UID()),
	})
}

// GetAvatar streams a user's avatar. The endpoint is public; avatars carry
// no access control.
func (h *UserHandler) GetAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	uid, err := paramInt64(c, "uid")
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return domain.ErrNotFound
	}

	content, err := h.files.Get(ctx, avatarPath(uid, user.Avatar))
	if err != nil {
		return domain.ErrNotFound
	}
	defer content.Close()

	contentType := mime.TypeByExtension("." + user.Avatar)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, content)
}

// ChangePassword replaces the caller's password after verifying the old one.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	hash, err := h.hasher.Hash(req.Password2)
	if err != nil {
		return err
	}
	if err := h.users.UpdatePassword(c.Request().Context(), user.UID(), hash); err != nil {
		return err
	}

	return ok(c, http.StatusOK, nil)
}
