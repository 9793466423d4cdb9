package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Category name length bounds.
const (
	MinCategoryNameLength = 2
	MaxCategoryNameLength = 50
)

// Category-specific validation errors
var (
	// ErrCategoryIDEmpty is returned when a category ID is empty or nil.
	ErrCategoryIDEmpty = errors.New("category ID cannot be empty")

	// ErrCategoryNameLength is returned when a category name is shorter than
	// MinCategoryNameLength or longer than MaxCategoryNameLength.
	ErrCategoryNameLength = errors.New("category name must be between 2 and 50 characters")

	// ErrCategoryColorEmpty is returned when a category's color is empty.
	ErrCategoryColorEmpty = errors.New("category color cannot be empty")
)

// Category is a label tasks may reference. Tasks hold the category's ID as a
// weak reference; categories know nothing about the tasks pointing at them.
// Duplicate names and colors are permitted.
type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// NewCategory creates a new Category with the given name and color.
// It generates a new UUID for the category ID.
// Returns an error if validation fails.
func NewCategory(name, color string) (*Category, error) {
	category := &Category{
		ID:    uuid.New(),
		Name:  name,
		Color: color,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
// Returns an error if any field fails validation.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCategoryIDEmpty
	}

	if len(c.Name) < MinCategoryNameLength || len(c.Name) > MaxCategoryNameLength {
		return ErrCategoryNameLength
	}

	if c.Color == "" {
		return ErrCategoryColorEmpty
	}

	return nil
}
