package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RegisterRequest is the DTO for account registration. Name defaults to the
// username when omitted.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// RenameRequest is the DTO for changing the display name.
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// ChangePasswordRequest carries the current and the replacement password.
type ChangePasswordRequest struct {
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required,min=6,max=128"`
}

// CreateTeamRequest is the DTO for team creation. CheckS and CheckE bound
// the daily attendance window as seconds since midnight.
type CreateTeamRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	Desc   string `json:"desc" validate:"max=512"`
	CheckS *int   `json:"check_s" validate:"required"`
	CheckE *int   `json:"check_e" validate:"required"`
}

// Team membership actions.
const (
	TeamActionJoin     = 1
	TeamActionLeave    = 2
	TeamActionTransfer = 3
)

// TeamActionRequest is the DTO for membership changes: join, leave, or
// leadership transfer, applied to the given uid.
type TeamActionRequest struct {
	Action int   `json:"action" validate:"required,min=1,max=3"`
	UID    int64 `json:"uid" validate:"required"`
}

// UpdateTeamRequest is the DTO for a team PATCH; nil fields stay unchanged.
type UpdateTeamRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=64"`
	Desc   *string `json:"desc" validate:"omitempty,max=512"`
	CheckS *int    `json:"check_s"`
	CheckE *int    `json:"check_e"`
}

// JoinByCodeRequest is the DTO for joining a team with an invite code.
type JoinByCodeRequest struct {
	InvCode string `json:"inv_code" validate:"required,len=16"`
}

// CreateScheduleRequest is the DTO for publishing a calendar entry.
// Start and End are dates in 2006-01-02 form.
type CreateScheduleRequest struct {
	Desc    string `json:"desc" validate:"required,max=512"`
	Urgency int    `json:"urgency" validate:"required,min=1,max=3"`
	Start   string `json:"start" validate:"required,datetime=2006-01-02"`
	End     string `json:"end" validate:"required,datetime=2006-01-02"`
}

// UpdateScheduleRequest is the DTO for a schedule PATCH.
type UpdateScheduleRequest struct {
	Desc    *string `json:"desc" validate:"omitempty,max=512"`
	Urgency *int    `json:"urgency" validate:"omitempty,min=1,max=3"`
	Start   *string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End     *string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

// CreateTaskRequest is the DTO for a leader assigning work to one member.
type CreateTaskRequest struct {
	Title    string    `json:"title" validate:"required,max=128"`
	Desc     string    `json:"desc" validate:"max=2048"`
	Assignee int64     `json:"assignee" validate:"required"`
	Deadline time.Time `json:"deadline" validate:"required"`
}

// SubmitTaskRequest is the DTO for the assignee's submission. Type selects
// the archive kind; when it is zero no archive is attached.
type SubmitTaskRequest struct {
	Finish *bool  `json:"finish" validate:"required"`
	Text   string `json:"text"`
	Desc   string `json:"desc" validate:"max=512"`
	Type   int    `json:"type" validate:"omitempty,min=1,max=3"`
}

// QuestionnaireOption mirrors domain.QOption on the wire.
type QuestionnaireOption struct {
	Desc string `json:"desc" validate:"required,max=256"`
}

// QuestionnaireQuestion is one question of a new questionnaire. Free-text
// questions carry no options.
type QuestionnaireQuestion struct {
	Desc    string                `json:"desc" validate:"required,max=512"`
	Type    int                   `json:"type" validate:"required,min=1,max=3"`
	Options []QuestionnaireOption `json:"options" validate:"dive"`
}

// CreateQuestionnaireRequest is the DTO for publishing a survey.
type CreateQuestionnaireRequest struct {
	Title     string                  `json:"title" validate:"required,max=128"`
	Desc      string                  `json:"desc" validate:"max=2048"`
	Deadline  time.Time               `json:"deadline" validate:"required"`
	Questions []QuestionnaireQuestion `json:"questions" validate:"required,min=1,dive"`
}
