package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"required,oneof=TODO IN_PROGRESS DONE"`
	DueDate     time.Time  `json:"due_date"    validate:"required"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}

// UpdateTaskRequest defines the payload for replacing a task's mutable fields.
type UpdateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"required,oneof=TODO IN_PROGRESS DONE"`
	DueDate     time.Time  `json:"due_date"    validate:"required"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}

// UpdateTaskStatusRequest defines the payload for the status transition endpoint.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

// TaskListResponse defines the paginated response for the task list endpoint.
type TaskListResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// CategoryRequest defines the payload for creating or updating a category.
type CategoryRequest struct {
	Name  string `json:"name"  validate:"required,min=2,max=50"`
	Color string `json:"color" validate:"required"`
}
