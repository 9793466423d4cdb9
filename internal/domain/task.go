package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// MaxTitleLength is the upper bound for task titles.
const MaxTitleLength = 255

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task's title exceeds MaxTitleLength.
	ErrTaskTitleTooLong = errors.New("task title exceeds maximum length")

	// ErrInvalidTaskStatus is returned when a task status is not one of the
	// known enum values.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrTaskDueDateZero is returned when a task's due date is not set.
	ErrTaskDueDateZero = errors.New("task due date is required")

	// ErrTaskDueDatePast is returned when a new task's due date is not in the future.
	ErrTaskDueDatePast = errors.New("task due date must be in the future")
)

// ValidStatus reports whether s is one of the known task status values.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a single unit of work owned by a user.
//
// The category reference is a nullable identifier, not an embedded object:
// a task survives the deletion of its category, at which point the reference
// is cleared. Ownership (UserID) is set at creation and never changes.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     time.Time  `json:"due_date"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. The due date must lie strictly after now.
// Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	status TaskStatus,
	dueDate time.Time,
	categoryID *uuid.UUID,
	now time.Time,
) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CategoryID:  categoryID,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if !dueDate.After(now) {
		return nil, ErrTaskDueDatePast
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if len(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if !ValidStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.DueDate.IsZero() {
		return ErrTaskDueDateZero
	}

	return nil
}
