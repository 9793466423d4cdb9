package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
)

// Sortable task columns accepted by FindFiltered. Anything else falls back
// to SortByCreatedAt.
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByTitle     = "title"
	SortByStatus    = "status"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TaskFilter carries the optional criteria of a task query. A nil field means
// unconstrained; present fields combine with logical AND. Owner scoping is not
// part of the filter — it is a mandatory, separate argument everywhere.
type TaskFilter struct {
	// Title, when set, matches as a case-insensitive substring of the task title.
	Title *string

	// Status, when set, requires exact equality.
	Status *domain.TaskStatus

	// CategoryID, when set, requires the task's category reference to equal it.
	// Tasks without a category never match.
	CategoryID *uuid.UUID

	// DueBefore, when set, requires due_date strictly before the given instant.
	DueBefore *time.Time

	// DueAfter, when set, requires due_date strictly after the given instant.
	DueAfter *time.Time
}

// PageRequest describes pagination and ordering for a task query.
// A PageSize of zero or less means "unpaged": return every match, still
// filtered and sorted. Page numbers are 1-based.
type PageRequest struct {
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// Unpaged reports whether the request asks for the full result set.
func (p PageRequest) Unpaged() bool {
	return p.PageSize <= 0
}

// Offset returns the row offset for a paged request.
func (p PageRequest) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.PageSize
}

// TaskPage is a bounded slice of matching tasks plus the total number of
// matches under the same predicate.
type TaskPage struct {
	Tasks      []*domain.Task
	TotalCount int64
	Page       int
	PageSize   int
}

// StatusCounts holds per-status task counts for one owner, as computed by
// dedicated count queries.
type StatusCounts struct {
	Todo       int64
	InProgress int64
	Done       int64
}

// Total returns the sum of all per-status counts. Status is a non-nullable
// column, so the sum equals the owner's unconstrained task count.
func (c StatusCounts) Total() int64 {
	return c.Todo + c.InProgress + c.Done
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner or category reference does not
	// exist (foreign key violation).
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByOwner retrieves every task owned by the given user, in stable
	// creation order. Used by the CSV exporter.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// FindFiltered retrieves the owner's tasks matching the filter, paged and
	// sorted per the page request. The returned page's TotalCount reflects the
	// same predicate, not the unfiltered set. An empty page is not an error.
	FindFiltered(
		ctx context.Context,
		ownerID uuid.UUID,
		filter TaskFilter,
		page PageRequest,
	) (*TaskPage, error)

	// CountByStatus returns per-status counts for the owner's tasks.
	// The counts are computed in the database, not by loading rows.
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (StatusCounts, error)

	// Update modifies an existing task's mutable fields (title, description,
	// status, due date, category reference) and refreshes updated_at. The
	// owner is never changed. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ClearCategoryReferences nulls the category reference of every task
	// currently referencing the given category, refreshing their updated_at.
	// Returns the number of detached tasks.
	//
	// IMPORTANT: only the category deletion flow calls this, and it MUST run
	// inside the same transaction as the category delete. Use WithTx together
	// with store.RunInTransaction.
	ClearCategoryReferences(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
