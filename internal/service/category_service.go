package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/store"
)

// CategoryService provides category-related operations.
type CategoryService interface {
	// GetCategories returns all categories ordered by name.
	GetCategories(ctx context.Context) ([]*domain.Category, error)

	// GetCategory retrieves a category by its ID.
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// CreateCategory creates a new category with the given name and color.
	CreateCategory(ctx context.Context, name, color string) (*domain.Category, error)

	// UpdateCategory replaces the name and color of an existing category.
	UpdateCategory(ctx context.Context, id uuid.UUID, name, color string) (*domain.Category, error)

	// DeleteCategory removes a category. Tasks referencing it are detached
	// (their category reference cleared) in the same transaction, so the
	// tasks survive the deletion and no dangling reference is left behind.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CategoryServiceImpl implements the CategoryService interface.
type CategoryServiceImpl struct {
	categoryStore store.CategoryStore
	taskStore     store.TaskStore
	db            *sql.DB
	logger        *slog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(
	categoryStore store.CategoryStore,
	taskStore store.TaskStore,
	db *sql.DB,
	logger *slog.Logger,
) CategoryService {
	return &CategoryServiceImpl{
		categoryStore: categoryStore,
		taskStore:     taskStore,
		db:            db,
		logger:        logger.With("component", "category_service"),
	}
}

// GetCategories returns all categories ordered by name.
func (s *CategoryServiceImpl) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by its ID.
// Returns store.ErrCategoryNotFound if it does not exist.
func (s *CategoryServiceImpl) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryStore.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to retrieve category",
				"error", err,
				"category_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return category, nil
}

// CreateCategory creates a new category with the given name and color.
func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, name, color string) (*domain.Category, error) {
	category, err := domain.NewCategory(name, color)
	if err != nil {
		s.logger.Debug("category validation failed during create",
			"error", err,
			"name", name)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if err := s.categoryStore.Create(ctx, category); err != nil {
		s.logger.Error("failed to save category",
			"error", err,
			"category_id", category.ID)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created successfully",
		"category_id", category.ID,
		"name", category.Name)

	return category, nil
}

// UpdateCategory replaces the name and color of an existing category.
// Returns store.ErrCategoryNotFound if it does not exist.
func (s *CategoryServiceImpl) UpdateCategory(
	ctx context.Context,
	id uuid.UUID,
	name, color string,
) (*domain.Category, error) {
	category := &domain.Category{ID: id, Name: name, Color: color}
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if err := s.categoryStore.Update(ctx, category); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to update category",
				"error", err,
				"category_id", id)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Debug("category updated successfully", "category_id", id)
	return category, nil
}

// DeleteCategory removes a category after detaching every task that
// references it. Both steps run in a single transaction: if the deletion
// fails, the detachment is rolled back and no task loses its category.
// Returns store.ErrCategoryNotFound if the category does not exist.
func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		detached, err := s.taskStore.WithTx(tx).ClearCategoryReferences(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to detach tasks from category: %w", err)
		}

		if err := s.categoryStore.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		s.logger.Info("category deleted successfully",
			"category_id", id,
			"detached_tasks", detached)
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			s.logger.Debug("attempted to delete non-existent category",
				"category_id", id)
		} else {
			s.logger.Error("failed to delete category",
				"error", err,
				"category_id", id)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
