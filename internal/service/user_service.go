package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/service/auth"
	"github.com/bszczerba/taskdeck/internal/store"
)

// UserService provides user-related operations.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByUsername retrieves a user by their username
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser registers a new user with the specified username and password.
	// Returns store.ErrUsernameExists if the username is already taken.
	CreateUser(ctx context.Context, username, password string) (*domain.User, error)

	// DeleteUser deletes a user by their ID
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore      store.UserStore
	passwordHasher auth.PasswordHasher
	db             *sql.DB
	logger         *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwordHasher auth.PasswordHasher,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		userStore:      userStore,
		passwordHasher: passwordHasher,
		db:             db,
		logger:         logger.With("component", "user_service"),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their username
func (s *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("user not found by username",
				"username", username)
		} else {
			s.logger.Error("failed to retrieve user by username",
				"error", err,
				"username", username)
		}
		return nil, fmt.Errorf("failed to retrieve user by username: %w", err)
	}

	return user, nil
}

// CreateUser registers a new user with the specified username and password.
// The password is hashed before storage and never persisted in plaintext.
// Uses a transaction to ensure atomicity of the operation.
func (s *UserServiceImpl) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		s.logger.Debug("user validation failed during registration",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	hashed, err := s.passwordHasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})

	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.Debug("attempted to create user with existing username",
				"username", username)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"username", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// DeleteUser deletes a user by their ID
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := s.userStore.WithTx(tx).Delete(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				s.logger.Debug("attempted to delete non-existent user",
					"user_id", userID)
			} else {
				s.logger.Error("failed to delete user",
					"error", err,
					"user_id", userID)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}

		s.logger.Info("user deleted successfully",
			"user_id", userID)

		return nil
	})
}
