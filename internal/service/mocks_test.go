package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/store"
)

// fixedClock returns the same instant on every call.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// MockTaskStore is a testify mock of store.TaskStore.
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, ownerID)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) FindFiltered(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	page store.PageRequest,
) (*store.TaskPage, error) {
	args := m.Called(ctx, ownerID, filter, page)
	if result, ok := args.Get(0).(*store.TaskPage); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) CountByStatus(ctx context.Context, ownerID uuid.UUID) (store.StatusCounts, error) {
	args := m.Called(ctx, ownerID)
	if counts, ok := args.Get(0).(store.StatusCounts); ok {
		return counts, args.Error(1)
	}
	return store.StatusCounts{}, args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) ClearCategoryReferences(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockCategoryStore is a testify mock of store.CategoryStore.
type MockCategoryStore struct {
	mock.Mock
}

var _ store.CategoryStore = (*MockCategoryStore)(nil)

func (m *MockCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if category, ok := args.Get(0).(*domain.Category); ok {
		return category, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if categories, ok := args.Get(0).([]*domain.Category); ok {
		return categories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return m
}

// MockUserStore is a testify mock of store.UserStore.
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// txRecorder counts transaction outcomes observed by the fake driver.
type txRecorder struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (r *txRecorder) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *txRecorder) Rollbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}

// fakeTxDB returns a *sql.DB backed by a driver that supports only
// Begin/Commit/Rollback, recording each outcome. It lets transaction
// orchestration be tested without a running database.
func fakeTxDB() (*sql.DB, *txRecorder) {
	recorder := &txRecorder{}
	return sql.OpenDB(fakeConnector{recorder: recorder}), recorder
}

type fakeConnector struct {
	recorder *txRecorder
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{recorder: c.recorder}, nil
}

func (c fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use the connector")
}

type fakeConn struct {
	recorder *txRecorder
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return &fakeTx{recorder: c.recorder}, nil
}

type fakeTx struct {
	recorder *txRecorder
}

func (t *fakeTx) Commit() error {
	t.recorder.mu.Lock()
	defer t.recorder.mu.Unlock()
	t.recorder.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.recorder.mu.Lock()
	defer t.recorder.mu.Unlock()
	t.recorder.rollbacks++
	return nil
}
