package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Archive types for task submissions.
const (
	ArchiveMarkdown = 1
	ArchiveRichText = 2
	ArchiveFile     = 3
)

// Archive is a submission attached to a task by its assignee.
type Archive struct {
	Content string `json:"content"`
	Desc    string `json:"desc,omitempty"`
	Type    int    `json:"type"`
}

// Task is a unit of work assigned by the team leader to a single member.
type Task struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	Title    string                  `json:"title"`
	Desc     string                  `json:"desc,omitempty"`
	Assignee int64                   `json:"assignee"`
	Datetime time.Time               `json:"datetime"`
	Deadline time.Time               `json:"deadline"`
	Finish   bool                    `json:"finish"`
	TeamID   int64                   `json:"team_id"`
	Archives []Archive               `json:"archives,omitempty"`
}

// TID returns the numeric identifier of the task record.
func (t *Task) TID() int64 {
	if t.ID == nil {
		return 0
	}
	return recordInt(t.ID)
}

// Task listing status filters: open, done, or all.
const (
	TaskStatusOpen = 0
	TaskStatusDone = 1
	TaskStatusAll  = 2
)

// TaskFilter narrows a team task listing.
type TaskFilter struct {
	Status   int
	Assignee int64 // 0 means any assignee
	Page     int
	PerPage  int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Pages int     `json:"pages"`
	Total int     `json:"total"`
	Tasks []*Task `json:"tasks"`
}

// TaskRepository defines the contract for task storage operations.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	GetByID(ctx context.Context, tid int64) (*Task, error)
	List(ctx context.Context, teamID int64, filter TaskFilter) (*TaskPage, error)
	// Submit flips the task's completion flag and, when archive is non-nil,
	// appends the submission to the task's archives.
	Submit(ctx context.Context, tid int64, finish bool, archive *Archive) (*Task, error)
}
