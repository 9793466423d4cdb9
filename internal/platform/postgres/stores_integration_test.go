package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bszczerba/taskdeck/internal/domain"
	"github.com/bszczerba/taskdeck/internal/platform/postgres"
	"github.com/bszczerba/taskdeck/internal/store"
	"github.com/bszczerba/taskdeck/internal/testutils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustCreateUser(t *testing.T, ctx context.Context, tx *sql.Tx) *domain.User {
	t.Helper()

	user, err := domain.NewUser("user-"+uuid.NewString()[:8], "password123")
	require.NoError(t, err)
	user.HashedPassword = "hashed-placeholder"
	user.Password = ""

	userStore := postgres.NewPostgresUserStore(tx, discardLogger())
	require.NoError(t, userStore.Create(ctx, user))
	return user
}

func mustCreateCategory(t *testing.T, ctx context.Context, tx *sql.Tx, name string) *domain.Category {
	t.Helper()

	category, err := domain.NewCategory(name, "#336699")
	require.NoError(t, err)

	categoryStore := postgres.NewPostgresCategoryStore(tx, discardLogger())
	require.NoError(t, categoryStore.Create(ctx, category))
	return category
}

func mustCreateTask(
	t *testing.T,
	ctx context.Context,
	tx *sql.Tx,
	ownerID uuid.UUID,
	title string,
	status domain.TaskStatus,
	dueDate time.Time,
	categoryID *uuid.UUID,
) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(ownerID, title, "", status, dueDate, categoryID, time.Now().UTC())
	require.NoError(t, err)

	taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())
	require.NoError(t, taskStore.Create(ctx, task))
	return task
}

func TestUserStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userStore := postgres.NewPostgresUserStore(tx, discardLogger())

		user := mustCreateUser(t, ctx, tx)

		byID, err := userStore.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, byID.Username)
		assert.Equal(t, "hashed-placeholder", byID.HashedPassword)
		assert.Empty(t, byID.Password)

		byName, err := userStore.GetByUsername(ctx, user.Username)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)

		_, err = userStore.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestUserStoreDuplicateUsername(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userStore := postgres.NewPostgresUserStore(tx, discardLogger())

		user := mustCreateUser(t, ctx, tx)

		dup, err := domain.NewUser(user.Username, "password456")
		require.NoError(t, err)
		dup.HashedPassword = "other-hash"
		dup.Password = ""

		err = userStore.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})
}

func TestTaskStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())

		owner := mustCreateUser(t, ctx, tx)
		category := mustCreateCategory(t, ctx, tx, "work-"+uuid.NewString()[:8])

		due := time.Now().UTC().Add(48 * time.Hour)
		task := mustCreateTask(t, ctx, tx, owner.ID, "write report", domain.TaskStatusTodo, due, &category.ID)

		got, err := taskStore.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, category.ID, *got.CategoryID)
		assert.WithinDuration(t, due, got.DueDate, time.Millisecond)

		got.Title = "write final report"
		got.Status = domain.TaskStatusInProgress
		got.CategoryID = nil
		require.NoError(t, taskStore.Update(ctx, got))

		updated, err := taskStore.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "write final report", updated.Title)
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
		assert.Nil(t, updated.CategoryID)

		require.NoError(t, taskStore.Delete(ctx, task.ID))
		assert.ErrorIs(t, taskStore.Delete(ctx, task.ID), store.ErrTaskNotFound)

		_, err = taskStore.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskStoreCreateUnknownOwner(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())

		task, err := domain.NewTask(
			uuid.New(), "orphan", "", domain.TaskStatusTodo,
			time.Now().UTC().Add(time.Hour), nil, time.Now().UTC())
		require.NoError(t, err)

		err = taskStore.Create(ctx, task)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestTaskStoreFindFiltered(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())

		owner := mustCreateUser(t, ctx, tx)
		other := mustCreateUser(t, ctx, tx)
		category := mustCreateCategory(t, ctx, tx, "chores-"+uuid.NewString()[:8])

		now := time.Now().UTC()
		mustCreateTask(t, ctx, tx, owner.ID, "Buy groceries", domain.TaskStatusTodo, now.Add(24*time.Hour), &category.ID)
		mustCreateTask(t, ctx, tx, owner.ID, "buy train tickets", domain.TaskStatusDone, now.Add(72*time.Hour), nil)
		mustCreateTask(t, ctx, tx, owner.ID, "Plan holiday", domain.TaskStatusTodo, now.Add(240*time.Hour), nil)
		mustCreateTask(t, ctx, tx, other.ID, "buy nothing", domain.TaskStatusTodo, now.Add(24*time.Hour), nil)

		t.Run("owner scoping", func(t *testing.T) {
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{}, store.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(3), page.TotalCount)
			assert.Len(t, page.Tasks, 3)
		})

		t.Run("title is case-insensitive substring", func(t *testing.T) {
			title := "buy"
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{Title: &title}, store.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), page.TotalCount)
		})

		t.Run("status filter", func(t *testing.T) {
			status := domain.TaskStatusDone
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{Status: &status}, store.PageRequest{})
			require.NoError(t, err)
			require.Len(t, page.Tasks, 1)
			assert.Equal(t, "buy train tickets", page.Tasks[0].Title)
		})

		t.Run("category filter excludes uncategorized", func(t *testing.T) {
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{CategoryID: &category.ID}, store.PageRequest{})
			require.NoError(t, err)
			require.Len(t, page.Tasks, 1)
			assert.Equal(t, "Buy groceries", page.Tasks[0].Title)
		})

		t.Run("due date bounds are strict", func(t *testing.T) {
			cutoff := now.Add(100 * time.Hour)
			before, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{DueBefore: &cutoff}, store.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), before.TotalCount)

			after, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{DueAfter: &cutoff}, store.PageRequest{})
			require.NoError(t, err)
			require.Len(t, after.Tasks, 1)
			assert.Equal(t, "Plan holiday", after.Tasks[0].Title)
		})

		t.Run("pagination counts the filtered set", func(t *testing.T) {
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{}, store.PageRequest{
				Page:     2,
				PageSize: 2,
				SortBy:   store.SortByDueDate,
				Order:    store.SortAsc,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(3), page.TotalCount)
			require.Len(t, page.Tasks, 1)
			assert.Equal(t, "Plan holiday", page.Tasks[0].Title)
		})

		t.Run("sorted by due date ascending", func(t *testing.T) {
			page, err := taskStore.FindFiltered(ctx, owner.ID, store.TaskFilter{}, store.PageRequest{
				SortBy: store.SortByDueDate,
				Order:  store.SortAsc,
			})
			require.NoError(t, err)
			require.Len(t, page.Tasks, 3)
			for i := 1; i < len(page.Tasks); i++ {
				assert.False(t, page.Tasks[i].DueDate.Before(page.Tasks[i-1].DueDate))
			}
		})
	})
}

func TestTaskStoreCountByStatus(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())

		owner := mustCreateUser(t, ctx, tx)
		now := time.Now().UTC()
		for i := 0; i < 3; i++ {
			mustCreateTask(t, ctx, tx, owner.ID, fmt.Sprintf("todo %d", i), domain.TaskStatusTodo, now.Add(time.Hour), nil)
		}
		mustCreateTask(t, ctx, tx, owner.ID, "doing", domain.TaskStatusInProgress, now.Add(time.Hour), nil)
		for i := 0; i < 2; i++ {
			mustCreateTask(t, ctx, tx, owner.ID, fmt.Sprintf("done %d", i), domain.TaskStatusDone, now.Add(time.Hour), nil)
		}

		counts, err := taskStore.CountByStatus(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts.Todo)
		assert.Equal(t, int64(1), counts.InProgress)
		assert.Equal(t, int64(2), counts.Done)
		assert.Equal(t, int64(6), counts.Total())
	})
}

func TestTaskStoreClearCategoryReferences(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		taskStore := postgres.NewPostgresTaskStore(tx, discardLogger())
		categoryStore := postgres.NewPostgresCategoryStore(tx, discardLogger())

		owner := mustCreateUser(t, ctx, tx)
		category := mustCreateCategory(t, ctx, tx, "doomed-"+uuid.NewString()[:8])
		keep := mustCreateCategory(t, ctx, tx, "kept-"+uuid.NewString()[:8])

		now := time.Now().UTC()
		attached := mustCreateTask(t, ctx, tx, owner.ID, "attached one", domain.TaskStatusTodo, now.Add(time.Hour), &category.ID)
		mustCreateTask(t, ctx, tx, owner.ID, "attached two", domain.TaskStatusTodo, now.Add(time.Hour), &category.ID)
		unrelated := mustCreateTask(t, ctx, tx, owner.ID, "unrelated", domain.TaskStatusTodo, now.Add(time.Hour), &keep.ID)

		detached, err := taskStore.ClearCategoryReferences(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), detached)

		require.NoError(t, categoryStore.Delete(ctx, category.ID))

		got, err := taskStore.GetByID(ctx, attached.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID, "detached task should survive without a category")

		kept, err := taskStore.GetByID(ctx, unrelated.ID)
		require.NoError(t, err)
		require.NotNil(t, kept.CategoryID)
		assert.Equal(t, keep.ID, *kept.CategoryID)
	})
}

func TestCategoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := testutils.GetTestDB(t)

	testutils.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		categoryStore := postgres.NewPostgresCategoryStore(tx, discardLogger())

		suffix := uuid.NewString()[:8]
		b := mustCreateCategory(t, ctx, tx, "bbb-"+suffix)
		a := mustCreateCategory(t, ctx, tx, "aaa-"+suffix)

		listed, err := categoryStore.List(ctx)
		require.NoError(t, err)

		positions := make(map[uuid.UUID]int)
		for i, c := range listed {
			positions[c.ID] = i
		}
		require.Contains(t, positions, a.ID)
		require.Contains(t, positions, b.ID)
		assert.Less(t, positions[a.ID], positions[b.ID], "categories should list in name order")

		a.Color = "#abcdef"
		require.NoError(t, categoryStore.Update(ctx, a))

		got, err := categoryStore.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "#abcdef", got.Color)

		require.NoError(t, categoryStore.Delete(ctx, b.ID))
		assert.ErrorIs(t, categoryStore.Delete(ctx, b.ID), store.ErrCategoryNotFound)

		_, err = categoryStore.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})
}
