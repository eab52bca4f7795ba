package todo_test

import (
	"context"
	"path/filepath"
	"testing"

	"gotodo/db"
	"gotodo/internal/auditlog"
	"gotodo/internal/todo"
	"gotodo/internal/users"
	"gotodo/models"
	"gotodo/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todoTestEnv struct {
	todos *todo.TodoService
	users *users.UserService
}

func setupTodoService(t *testing.T) (*todoTestEnv, func()) {
	factory, cleanup := testutils.SetupTestRepositoryFactory(t)
	dbManager := db.NewDBManager()

	auditLog, err := auditlog.NewAuditLogService(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, err)

	env := &todoTestEnv{
		todos: todo.NewTodoService(factory.NewTodoRepository(), dbManager, auditLog),
		users: users.NewUserService(factory.NewUserRepository(), dbManager),
	}
	return env, func() {
		auditLog.Close()
		dbManager.Stop()
		cleanup()
	}
}

func (e *todoTestEnv) registerUser(t *testing.T, username string) *models.User {
	user, err := e.users.Register(context.Background(), username, testutils.TestPassword)
	require.NoError(t, err)
	return user
}

func TestTodoService_CreateAndGet(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	created, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{
		Title:       "  Buy milk  ",
		Description: "2 liters",
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "2 liters", created.Description)
	assert.False(t, created.Completed)

	got, err := env.todos.Get(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
}

func TestTodoService_Create_EmptyTitle(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	_, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: "   "})
	assert.ErrorIs(t, err, todo.ErrEmptyTitle)
}

func TestTodoService_ListFiltersAndCounts(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	first, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: "first"})
	require.NoError(t, err)
	_, err = env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: "second"})
	require.NoError(t, err)
	_, err = env.todos.Toggle(context.Background(), user.ID, first.ID)
	require.NoError(t, err)

	all, err := env.todos.List(context.Background(), user.ID, models.TodoFilterAll)
	require.NoError(t, err)
	assert.Len(t, all.Todos, 2)
	assert.Equal(t, 2, all.Counts.Total)
	assert.Equal(t, 1, all.Counts.Pending)
	assert.Equal(t, 1, all.Counts.Completed)

	pending, err := env.todos.List(context.Background(), user.ID, models.TodoFilterPending)
	require.NoError(t, err)
	require.Len(t, pending.Todos, 1)
	assert.Equal(t, "second", pending.Todos[0].Title)
	// counts always cover every row, not just the filtered view
	assert.Equal(t, 2, pending.Counts.Total)

	completed, err := env.todos.List(context.Background(), user.ID, models.TodoFilterCompleted)
	require.NoError(t, err)
	require.Len(t, completed.Todos, 1)
	assert.Equal(t, first.ID, completed.Todos[0].ID)

	_, err = env.todos.List(context.Background(), user.ID, models.TodoFilter("bogus"))
	assert.ErrorIs(t, err, todo.ErrInvalidFilter)
}

func TestTodoService_Update_PartialFields(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	created, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{
		Title:       "original",
		Description: "keep me",
	})
	require.NoError(t, err)

	newTitle := "renamed"
	updated, err := env.todos.Update(context.Background(), user.ID, created.ID, todo.UpdateTodoRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.False(t, updated.Completed)

	empty := "  "
	_, err = env.todos.Update(context.Background(), user.ID, created.ID, todo.UpdateTodoRequest{Title: &empty})
	assert.ErrorIs(t, err, todo.ErrEmptyTitle)
}

func TestTodoService_Toggle(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	created, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: "toggle me"})
	require.NoError(t, err)

	toggled, err := env.todos.Toggle(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = env.todos.Toggle(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestTodoService_DeleteThenUpdate(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	created, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: "short lived"})
	require.NoError(t, err)

	err = env.todos.Delete(context.Background(), user.ID, created.ID)
	require.NoError(t, err)

	title := "too late"
	_, err = env.todos.Update(context.Background(), user.ID, created.ID, todo.UpdateTodoRequest{Title: &title})
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = env.todos.Delete(context.Background(), user.ID, created.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestTodoService_OwnerScoping(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	created, err := env.todos.Create(context.Background(), alice.ID, todo.CreateTodoRequest{Title: "alice only"})
	require.NoError(t, err)

	// every operation against a foreign row behaves as if it did not exist
	_, err = env.todos.Get(context.Background(), bob.ID, created.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	completed := true
	_, err = env.todos.Update(context.Background(), bob.ID, created.ID, todo.UpdateTodoRequest{Completed: &completed})
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = env.todos.Delete(context.Background(), bob.ID, created.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	list, err := env.todos.List(context.Background(), bob.ID, models.TodoFilterAll)
	require.NoError(t, err)
	assert.Empty(t, list.Todos)
	assert.Equal(t, 0, list.Counts.Total)

	got, err := env.todos.Get(context.Background(), alice.ID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTodoService_ClearCompleted(t *testing.T) {
	env, cleanup := setupTodoService(t)
	defer cleanup()
	user := env.registerUser(t, "alice")

	var completedIDs []string
	for _, title := range []string{"one", "two", "three"} {
		created, err := env.todos.Create(context.Background(), user.ID, todo.CreateTodoRequest{Title: title})
		require.NoError(t, err)
		if title != "three" {
			completedIDs = append(completedIDs, created.ID)
		}
	}
	for _, id := range completedIDs {
		_, err := env.todos.Toggle(context.Background(), user.ID, id)
		require.NoError(t, err)
	}

	cleared, err := env.todos.ClearCompleted(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	list, err := env.todos.List(context.Background(), user.ID, models.TodoFilterAll)
	require.NoError(t, err)
	require.Len(t, list.Todos, 1)
	assert.Equal(t, "three", list.Todos[0].Title)

	// clearing again is a no-op
	cleared, err = env.todos.ClearCompleted(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cleared)
}
