package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
)

// CategoryStore defines the interface for category data persistence.
type CategoryStore interface {
	// Create saves a new category to the store.
	// Returns validation errors from the domain Category if data is invalid.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique ID.
	// Returns ErrCategoryNotFound if the category does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// List retrieves all categories in name order.
	List(ctx context.Context) ([]*domain.Category, error)

	// Update modifies an existing category's name and color.
	// Returns ErrCategoryNotFound if the category does not exist.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category from the store by its ID.
	// Returns ErrCategoryNotFound if the category does not exist.
	//
	// Tasks referencing the category are NOT touched here; the category
	// deletion flow must first call TaskStore.ClearCategoryReferences within
	// the same transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) CategoryStore
}
