package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/store"
)

// DeadlineFilter selects tasks relative to the current time.
type DeadlineFilter string

const (
	// DeadlineBefore selects overdue tasks.
	DeadlineBefore DeadlineFilter = "BEFORE_DEADLINE"

	// DeadlineAfter selects tasks whose due date has not yet passed.
	DeadlineAfter DeadlineFilter = "AFTER_DEADLINE"
)

// ParseDeadlineFilter converts a string into a DeadlineFilter.
// Returns ErrInvalidDeadlineFilter for unrecognized values.
func ParseDeadlineFilter(s string) (DeadlineFilter, error) {
	switch DeadlineFilter(s) {
	case DeadlineBefore, DeadlineAfter:
		return DeadlineFilter(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeadlineFilter, s)
	}
}

// csvHeader is the column layout of the CSV export.
var csvHeader = []string{"ID", "Title", "Description", "Status", "Due Date", "Category", "Created At", "Updated At"}

// TaskQuery holds the optional filter criteria for listing tasks.
// All criteria combine conjunctively; nil fields are unconstrained.
type TaskQuery struct {
	// Title matches as a case-insensitive substring anywhere in the task
	// title. An empty or whitespace-only value is treated as absent.
	Title *string

	// Status restricts results to tasks in the given lifecycle state.
	Status *domain.TaskStatus

	// CategoryID restricts results to tasks assigned to the given category.
	CategoryID *uuid.UUID

	// Deadline restricts results relative to the current time.
	Deadline *DeadlineFilter
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     time.Time
	CategoryID  *uuid.UUID
}

// UpdateTaskInput carries the full replacement state for an existing task.
type UpdateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     time.Time
	CategoryID  *uuid.UUID
}

// Dashboard summarizes a user's tasks by lifecycle state.
type Dashboard struct {
	Total            int64   `json:"total"`
	Todo             int64   `json:"todo"`
	InProgress       int64   `json:"in_progress"`
	Done             int64   `json:"done"`
	CompletedPercent float64 `json:"completed_percent"`
}

// TaskService provides task-related operations. Every operation is scoped to
// the owning user: tasks belonging to other users behave as if they did not
// exist.
type TaskService interface {
	// GetTasks returns a page of the user's tasks matching the query.
	GetTasks(ctx context.Context, ownerID uuid.UUID, query TaskQuery, page store.PageRequest) (*store.TaskPage, error)

	// GetTask retrieves a single task owned by the user.
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// CreateTask creates a new task owned by the user. If a category is
	// given it must exist.
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// UpdateTask replaces the mutable fields of an existing task.
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// UpdateTaskStatus transitions a task to the given lifecycle state.
	UpdateTaskStatus(ctx context.Context, ownerID, taskID uuid.UUID, status domain.TaskStatus) (*domain.Task, error)

	// DeleteTask removes a task owned by the user.
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error

	// GetDashboard returns per-status counts and the completion percentage
	// for the user's tasks.
	GetDashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error)

	// ExportCSV serializes all of the user's tasks as CSV.
	ExportCSV(ctx context.Context, ownerID uuid.UUID) ([]byte, error)
}

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskStore     store.TaskStore
	categoryStore store.CategoryStore
	clock         Clock
	logger        *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	categoryStore store.CategoryStore,
	clock Clock,
	logger *slog.Logger,
) TaskService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TaskServiceImpl{
		taskStore:     taskStore,
		categoryStore: categoryStore,
		clock:         clock,
		logger:        logger.With("component", "task_service"),
	}
}

// GetTasks returns a page of the user's tasks matching the query.
// Relative deadline filters are resolved against the clock at call time.
func (s *TaskServiceImpl) GetTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	query TaskQuery,
	page store.PageRequest,
) (*store.TaskPage, error) {
	filter := store.TaskFilter{
		Status:     query.Status,
		CategoryID: query.CategoryID,
	}

	if query.Title != nil {
		if title := strings.TrimSpace(*query.Title); title != "" {
			filter.Title = &title
		}
	}

	if query.Deadline != nil {
		now := s.clock.Now()
		switch *query.Deadline {
		case DeadlineBefore:
			filter.DueBefore = &now
		case DeadlineAfter:
			filter.DueAfter = &now
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidDeadlineFilter, *query.Deadline)
		}
	}

	result, err := s.taskStore.FindFiltered(ctx, ownerID, filter, page)
	if err != nil {
		s.logger.Error("failed to query tasks",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	return result, nil
}

// GetTask retrieves a single task owned by the user.
// Returns store.ErrTaskNotFound if the task does not exist or belongs to
// another user.
func (s *TaskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to retrieve task",
				"error", err,
				"task_id", taskID)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if task.UserID != ownerID {
		s.logger.Debug("task access denied for non-owner",
			"task_id", taskID,
			"user_id", ownerID)
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// CreateTask creates a new task owned by the user.
// Returns store.ErrCategoryNotFound if a category is given but does not exist.
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	if input.CategoryID != nil {
		if _, err := s.categoryStore.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
	}

	task, err := domain.NewTask(
		ownerID,
		input.Title,
		input.Description,
		input.Status,
		input.DueDate,
		input.CategoryID,
		s.clock.Now(),
	)
	if err != nil {
		s.logger.Debug("task validation failed during create",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to save task",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created successfully",
		"task_id", task.ID,
		"user_id", ownerID)

	return task, nil
}

// UpdateTask replaces the mutable fields of an existing task owned by the
// user. The due date must still lie in the future.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryStore.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	task.DueDate = input.DueDate
	task.CategoryID = input.CategoryID

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !input.DueDate.After(s.clock.Now()) {
		return nil, fmt.Errorf("failed to update task: %w", domain.ErrTaskDueDatePast)
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Debug("task updated successfully",
		"task_id", taskID,
		"user_id", ownerID)

	return task, nil
}

// UpdateTaskStatus transitions a task to the given lifecycle state without
// touching its other fields.
func (s *TaskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task status",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Debug("task status updated",
		"task_id", taskID,
		"status", string(status))

	return task, nil
}

// DeleteTask removes a task owned by the user.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.GetTask(ctx, ownerID, taskID); err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted successfully",
		"task_id", taskID,
		"user_id", ownerID)

	return nil
}

// GetDashboard returns per-status counts and the completion percentage for
// the user's tasks. A user with no tasks gets all-zero counts.
func (s *TaskServiceImpl) GetDashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	counts, err := s.taskStore.CountByStatus(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to count tasks for dashboard",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	dashboard := &Dashboard{
		Total:      counts.Total(),
		Todo:       counts.Todo,
		InProgress: counts.InProgress,
		Done:       counts.Done,
	}
	if dashboard.Total > 0 {
		dashboard.CompletedPercent = float64(counts.Done*100) / float64(dashboard.Total)
	}

	return dashboard, nil
}

// ExportCSV serializes all of the user's tasks as CSV, one row per task
// after a header row. Timestamps are formatted as RFC 3339 in UTC, and the
// category column carries the category name or is empty for uncategorized
// tasks.
func (s *TaskServiceImpl) ExportCSV(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	tasks, err := s.taskStore.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list tasks for export",
			"error", err,
			"user_id", ownerID)
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}

	categoryNames, err := s.categoryNamesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVGeneration, err)
	}

	for _, task := range tasks {
		categoryName := ""
		if task.CategoryID != nil {
			categoryName = categoryNames[*task.CategoryID]
		}

		record := []string{
			task.ID.String(),
			task.Title,
			task.Description,
			string(task.Status),
			task.DueDate.UTC().Format(time.RFC3339),
			categoryName,
			task.CreatedAt.UTC().Format(time.RFC3339),
			task.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCSVGeneration, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVGeneration, err)
	}

	s.logger.Debug("exported tasks as CSV",
		"user_id", ownerID,
		"task_count", len(tasks))

	return buf.Bytes(), nil
}

func (s *TaskServiceImpl) categoryNamesByID(ctx context.Context) (map[uuid.UUID]string, error) {
	categories, err := s.categoryStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list categories for export", "error", err)
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}
