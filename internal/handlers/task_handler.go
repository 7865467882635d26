package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/activity"
	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/pubsub"
	"github.com/zenigame/zenigame/internal/storage"
)

// TaskHandler handles work assignment and submission.
type TaskHandler struct {
	tasks     domain.TaskRepository
	teams     domain.TeamRepository
	publisher pubsub.Publisher
	files     storage.FileStorage
	perPage   int
}

// NewTaskHandler creates a new TaskHandler. perPage fixes the listing page
// size.
func NewTaskHandler(tasks domain.TaskRepository, teams domain.TeamRepository, publisher pubsub.Publisher, files storage.FileStorage, perPage int) *TaskHandler {
	return &TaskHandler{tasks: tasks, teams: teams, publisher: publisher, files: files, perPage: perPage}
}

// Create assigns a task to one member. Leader only.
func (h *TaskHandler) Create(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamLeader(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	task := &domain.Task{
		Title:    req.Title,
		Desc:     req.Desc,
		Assignee: req.Assignee,
		Datetime: time.Now().UTC(),
		Deadline: req.Deadline,
		TeamID:   tid,
	}
	created, err := h.tasks.Create(ctx, task)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, tid, user.UID(),
		fmt.Sprintf("%s assigned a task: %s", user.Name, created.Title))

	return ok(c, http.StatusCreated, newTaskResponse(created))
}

// List returns the team's tasks, newest first, paginated. Member only.
// status filters 0 open / 1 done / 2 all; self restricts to the caller's
// assignments.
func (h *TaskHandler) List(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	status := domain.TaskStatusAll
	if raw := c.QueryParam("status"); raw != "" {
		status, err = strconv.Atoi(raw)
		if err != nil || status < domain.TaskStatusOpen || status > domain.TaskStatusAll {
			return badRequest("invalid status")
		}
	}
	self, _ := strconv.ParseBool(c.QueryParam("self"))
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return badRequest("invalid page")
		}
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if _, err := requireTeamMember(ctx, h.teams, tid, user.UID()); err != nil {
		return err
	}

	filter := domain.TaskFilter{Status: status, Page: page, PerPage: h.perPage}
	if self {
		filter.Assignee = user.UID()
	}

	result, err := h.tasks.List(ctx, tid, filter)
	if err != nil {
		return err
	}

	items := make([]TaskResponse, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		items = append(items, newTaskResponse(t))
	}
	return ok(c, http.StatusOK, PageResponse{Pages: result.Pages, Total: result.Total, Items: items})
}

// bindSubmit decodes a submission from either a JSON body or a multipart
// form. File submissions must use multipart; the returned header is non-nil
// only when a file part was included.
func bindSubmit(c echo.Context) (SubmitTaskRequest, *multipart.FileHeader, error) {
	var req SubmitTaskRequest

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, nil, badRequest("invalid request body")
		}
		return req, nil, nil
	}

	finish, err := strconv.ParseBool(c.FormValue("finish"))
	if err != nil {
		return req, nil, badRequest("finish must be a boolean")
	}
	req.Finish = &finish
	req.Text = c.FormValue("text")
	req.Desc = c.FormValue("desc")
	if v := c.FormValue("type"); v != "" {
		if req.Type, err = strconv.Atoi(v); err != nil {
			return req, nil, badRequest("type must be an integer")
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader = nil
	}
	return req, fileHeader, nil
}

// Submit records the assignee's submission and flips the completion flag.
// Markdown and rich-text submissions are stored inline; file submissions are
// saved to file storage and referenced by path.
func (h *TaskHandler) Submit(c echo.Context) error {
	tid, err := paramInt64(c, "tid")
	if err != nil {
		return err
	}

	req, fileHeader, err := bindSubmit(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	task, err := h.tasks.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	if task.Assignee != user.UID() {
		return domain.ErrForbidden
	}

	var archive *domain.Archive
	switch req.Type {
	case 0:
		// Nothing to attach.
	case domain.ArchiveMarkdown, domain.ArchiveRichText:
		if req.Text == "" {
			return badRequest("submission text is required for this type")
		}
		archive = &domain.Archive{Content: req.Text, Desc: req.Desc, Type: req.Type}
	case domain.ArchiveFile:
		if fileHeader == nil {
			return badRequest("file submissions require a multipart file part")
		}
		storagePath, err := h.storeSubmission(ctx, tid, fileHeader)
		if err != nil {
			return err
		}
		archive = &domain.Archive{Content: storagePath, Desc: req.Desc, Type: req.Type}
	default:
		return badRequest("unknown submission type")
	}

	updated, err := h.tasks.Submit(ctx, tid, *req.Finish, archive)
	if err != nil {
		return err
	}

	activity.Record(ctx, h.publisher, task.TeamID, user.UID(),
		fmt.Sprintf("%s submitted the task: %s", user.Name, task.Title))

	return ok(c, http.StatusOK, newTaskResponse(updated))
}

// storeSubmission writes an uploaded submission under the task's directory,
// prefixing the sanitized filename with a timestamp to avoid collisions.
func (h *TaskHandler) storeSubmission(ctx context.Context, tid int64, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := path.Base(filepath.ToSlash(fileHeader.Filename))
	storagePath := fmt.Sprintf("tasks/%d/%d-%s", tid, time.Now().UnixNano(), name)
	if _, err := h.files.Save(ctx, storagePath, src); err != nil {
		return "", err
	}
	return storagePath, nil
}
