package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bszczerba/taskdeck/internal/config"
	"github.com/bszczerba/taskdeck/internal/platform/postgres"
	"github.com/bszczerba/taskdeck/internal/service"
	"github.com/bszczerba/taskdeck/internal/service/auth"
)

// application holds the long-lived dependencies of the server: configuration,
// logger, database pool and the service layer built on top of them.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	taskService     service.TaskService
	categoryService service.CategoryService
	userService     service.UserService
}

// newApplication wires stores and services from the core dependencies that
// must already be established: configuration, logger and an open database
// connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()
	passwordHasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	taskStore := postgres.NewPostgresTaskStore(db, logger)
	categoryStore := postgres.NewPostgresCategoryStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)

	app.taskService = service.NewTaskService(taskStore, categoryStore, nil, logger)
	app.categoryService = service.NewCategoryService(categoryStore, taskStore, db, logger)
	app.userService = service.NewUserService(userStore, passwordHasher, db, logger)

	logger.Info("Application services initialized")
	return app, nil
}

// Run builds the router and serves HTTP until the context is canceled or a
// shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// cleanup releases resources during shutdown.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
