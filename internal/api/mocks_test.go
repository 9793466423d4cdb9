package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bszczerba/taskdeck/internal/api/shared"
	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/service"
	"github.com/bszczerba/taskdeck/internal/service/auth"
	"github.com/bszczerba/taskdeck/internal/store"
)

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) GetTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	query service.TaskQuery,
	page store.PageRequest,
) (*store.TaskPage, error) {
	args := m.Called(ctx, ownerID, query, page)
	if result, ok := args.Get(0).(*store.TaskPage); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, input)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID, input)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) UpdateTaskStatus(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, taskID, status)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	args := m.Called(ctx, ownerID, taskID)
	return args.Error(0)
}

func (m *MockTaskService) GetDashboard(ctx context.Context, ownerID uuid.UUID) (*service.Dashboard, error) {
	args := m.Called(ctx, ownerID)
	if dashboard, ok := args.Get(0).(*service.Dashboard); ok {
		return dashboard, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskService) ExportCSV(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, ownerID)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCategoryService is a testify mock of service.CategoryService.
type MockCategoryService struct {
	mock.Mock
}

var _ service.CategoryService = (*MockCategoryService)(nil)

func (m *MockCategoryService) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if categories, ok := args.Get(0).([]*domain.Category); ok {
		return categories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if category, ok := args.Get(0).(*domain.Category); ok {
		return category, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, name, color string) (*domain.Category, error) {
	args := m.Called(ctx, name, color)
	if category, ok := args.Get(0).(*domain.Category); ok {
		return category, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(
	ctx context.Context,
	id uuid.UUID,
	name, color string,
) (*domain.Category, error) {
	args := m.Called(ctx, id, name, color)
	if category, ok := args.Get(0).(*domain.Category); ok {
		return category, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserService is a testify mock of service.UserService.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService is a testify mock of auth.JWTService.
type MockJWTService struct {
	mock.Mock
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	if claims, ok := args.Get(0).(*auth.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	if claims, ok := args.Get(0).(*auth.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPasswordVerifier is a testify mock of auth.PasswordVerifier.
type MockPasswordVerifier struct {
	mock.Mock
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

// authenticatedRequest builds a request carrying the given user ID in its
// context, the way the auth middleware would.
func authenticatedRequest(t *testing.T, method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}
