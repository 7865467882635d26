package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	"github.com/zenigame/zenigame/internal/domain"
)

// TaskStore implements domain.TaskRepository on SurrealDB.
type TaskStore struct {
	db *surrealdb.DB
}

// NewTaskStore creates a new task store.
func NewTaskStore(db *surrealdb.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts a new task for its team.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	tid, err := NextID(ctx, s.db, "task")
	if err != nil {
		return nil, err
	}

	query := "CREATE type::thing('task', $tid) CONTENT $data"
	created, err := QueryOne[domain.Task](ctx, s.db, query, map[string]any{
		"tid":  tid,
		"data": task,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("create task returned no record")
	}
	return created, nil
}

// GetByID retrieves a task by its numeric ID.
func (s *TaskStore) GetByID(ctx context.Context, tid int64) (*domain.Task, error) {
	query := "SELECT * FROM type::thing('task', $tid)"
	task, err := QueryOne[domain.Task](ctx, s.db, query, map[string]any{"tid": tid})
	if err != nil {
		return nil, err
	}
	if task == nil || task.ID == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

type countRow struct {
	Count int `json:"count"`
}

// List returns one page of the team's tasks, newest first.
func (s *TaskStore) List(ctx context.Context, teamID int64, filter domain.TaskFilter) (*domain.TaskPage, error) {
	where := "team_id = $tid"
	params := map[string]any{"tid": teamID}

	switch filter.Status {
	case domain.TaskStatusOpen:
		where += " AND finish = false"
	case domain.TaskStatusDone:
		where += " AND finish = true"
	}
	if filter.Assignee != 0 {
		where += " AND assignee = $assignee"
		params["assignee"] = filter.Assignee
	}

	countQuery := "SELECT count() AS count FROM task WHERE " + where + " GROUP ALL"
	row, err := QueryOne[countRow](ctx, s.db, countQuery, params)
	if err != nil {
		return nil, err
	}
	total := 0
	if row != nil {
		total = row.Count
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	params["limit"] = perPage
	params["start"] = (page - 1) * perPage

	listQuery := "SELECT * FROM task WHERE " + where + " ORDER BY datetime DESC LIMIT $limit START $start"
	tasks, err := Query[*domain.Task](ctx, s.db, listQuery, params)
	if err != nil {
		return nil, err
	}

	return &domain.TaskPage{
		Pages: pageCount(total, perPage),
		Total: total,
		Tasks: tasks,
	}, nil
}

// Submit flips the task's completion flag and appends the submission, if any.
func (s *TaskStore) Submit(ctx context.Context, tid int64, finish bool, archive *domain.Archive) (*domain.Task, error) {
	query := "UPDATE type::thing('task', $tid) SET finish = $finish RETURN AFTER"
	params := map[string]any{"tid": tid, "finish": finish}
	if archive != nil {
		query = "UPDATE type::thing('task', $tid) SET finish = $finish, archives += $archive RETURN AFTER"
		params["archive"] = archive
	}

	task, err := QueryOne[domain.Task](ctx, s.db, query, params)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return page, perPage
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
