package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TaskStatus is one of the seeded rows of tasks_status.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOTSTARTED"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusDone       TaskStatus = "DONE"
)

// MaxTitleLength matches the varchar(255) column.
const MaxTitleLength = 255

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusPending, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	UserID    int64      `json:"user_id"`
	Status    TaskStatus `json:"status"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	UpdatedBy *int64     `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewTask builds a task owned by ownerID. An empty status means NOTSTARTED.
func NewTask(ownerID int64, title string, status TaskStatus) (*Task, error) {
	if status == "" {
		status = TaskStatusNotStarted
	}
	owner := ownerID
	task := &Task{
		Title:     strings.TrimSpace(title),
		UserID:    ownerID,
		Status:    status,
		CreatedBy: &owner,
		CreatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the invariants of a stored task.
func (t *Task) Validate() error {
	if t.UserID <= 0 {
		return NewValidationError("user_id", "must reference a user", ErrInvalidID)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "must be one of NOTSTARTED, PENDING, DONE", ErrInvalidTaskStatus)
	}
	return nil
}

// ValidateTitle rejects blank or oversized titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "is required", nil)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "must be at most 255 characters", nil)
	}
	return nil
}

// TaskPatch carries the fields of a partial task update.
type TaskPatch struct {
	Title  *string
	Status *TaskStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil
}
