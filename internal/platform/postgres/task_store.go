package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/platform/logger"
	"github.com/bszczerba/taskdeck/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = "id, user_id, title, description, status, due_date, category_id, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner or category does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, due_date, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		categoryRef(task.CategoryID),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return MapError(err)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	log.Debug("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// ListByOwner implements store.TaskStore.ListByOwner
// Tasks come back in creation order with id as tie-break, so repeated exports
// of an unchanged data set produce identical output.
func (s *PostgresTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE user_id = $1 ORDER BY created_at, id",
		taskColumns,
	)

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list tasks by owner",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// FindFiltered implements store.TaskStore.FindFiltered
// It assembles a conjunctive WHERE clause from the present filter fields and
// runs both the page query and the count query against the same predicate.
func (s *PostgresTaskStore) FindFiltered(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	page store.PageRequest,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskPredicate(ownerID, filter)

	countQuery := "SELECT COUNT(*) FROM tasks WHERE " + where

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count filtered tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE %s ORDER BY %s",
		taskColumns,
		where,
		orderClause(page),
	)

	if !page.Unpaged() {
		args = append(args, page.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, page.Offset())
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query filtered tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}

	log.Debug("filtered tasks retrieved",
		slog.String("user_id", ownerID.String()),
		slog.Int("rows", len(tasks)),
		slog.Int64("total", total))

	return &store.TaskPage{
		Tasks:      tasks,
		TotalCount: total,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}, nil
}

// CountByStatus implements store.TaskStore.CountByStatus
// A single GROUP BY query; statuses with no tasks simply produce no row.
func (s *PostgresTaskStore) CountByStatus(ctx context.Context, ownerID uuid.UUID) (store.StatusCounts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE user_id = $1
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to count tasks by status",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return store.StatusCounts{}, err
	}
	defer func() { _ = rows.Close() }()

	var counts store.StatusCounts
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return store.StatusCounts{}, err
		}

		switch domain.TaskStatus(status) {
		case domain.TaskStatusTodo:
			counts.Todo = count
		case domain.TaskStatusInProgress:
			counts.InProgress = count
		case domain.TaskStatusDone:
			counts.Done = count
		}
	}

	if err := rows.Err(); err != nil {
		return store.StatusCounts{}, err
	}

	return counts, nil
}

// Update implements store.TaskStore.Update
// The owner column is deliberately absent from the SET list: ownership never changes.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4, category_id = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		categoryRef(task.CategoryID),
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task update",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return MapError(err)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found during update", slog.String("task_id", task.ID.String()))
		return err
	}

	log.Debug("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found during delete", slog.String("task_id", id.String()))
		return err
	}

	log.Debug("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// ClearCategoryReferences implements store.TaskStore.ClearCategoryReferences
// Affecting zero tasks is not an error: a category may legitimately have no
// referencing tasks at deletion time.
func (s *PostgresTaskStore) ClearCategoryReferences(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET category_id = NULL, updated_at = $1
		WHERE category_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), categoryID)
	if err != nil {
		log.Error("failed to clear category references",
			slog.String("error", err.Error()),
			slog.String("category_id", categoryID.String()))
		return 0, err
	}

	detached, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("category references cleared",
		slog.String("category_id", categoryID.String()),
		slog.Int64("detached_tasks", detached))
	return detached, nil
}

// buildTaskPredicate assembles the conjunctive WHERE clause for a task query.
// Owner scoping always comes first; each present filter field appends one
// fragment with a positional argument.
func buildTaskPredicate(ownerID uuid.UUID, filter store.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	if filter.Title != nil {
		args = append(args, "%"+escapeLikePattern(*filter.Title)+"%")
		conds = append(conds, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.CategoryID != nil {
		// A NULL category_id never equals anything, so uncategorized tasks
		// drop out here without special casing.
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}

	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		conds = append(conds, fmt.Sprintf("due_date < $%d", len(args)))
	}

	if filter.DueAfter != nil {
		args = append(args, *filter.DueAfter)
		conds = append(conds, fmt.Sprintf("due_date > $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// orderClause returns the ORDER BY body for a page request. The sort column is
// checked against a whitelist; id is always appended as a tie-break so paging
// over equal sort keys stays deterministic.
func orderClause(page store.PageRequest) string {
	column := store.SortByCreatedAt
	switch page.SortBy {
	case store.SortByCreatedAt, store.SortByDueDate, store.SortByTitle, store.SortByStatus:
		column = page.SortBy
	}

	direction := "DESC"
	if strings.EqualFold(page.Order, store.SortAsc) {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s, id ASC", column, direction)
}

// escapeLikePattern escapes the LIKE metacharacters in a user-supplied
// substring so it matches literally.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// categoryRef converts the optional category reference to its SQL value.
func categoryRef(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	var categoryID uuid.NullUUID

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&task.DueDate,
		&categoryID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if categoryID.Valid {
		id := categoryID.UUID
		task.CategoryID = &id
	}

	return &task, nil
}

// collectTasks drains rows into a slice, surfacing any iteration error.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
