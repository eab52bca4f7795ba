package db

import (
	"context"

	"gotodo/internal/util"
	"gotodo/models"

	"github.com/sirupsen/logrus"
)

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes mutating access to the SQLite file. SQLite allows a
// single writer at a time; funneling writes through one worker keeps the
// request handlers free of lock errors.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	logrus.Info("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := util.RetryOnLock(op.Execute)
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := util.RetryOnLockWithResult(op.Execute)
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation with retries
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: execute,
		Result:  resultChan,
	}
	return <-resultChan
}

// ExecuteOperationWithResult executes a database operation that returns a result with retries
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	m.resultOpQueue <- OperationWithResult{
		Execute: execute,
		Result:  resultChan,
	}
	result := <-resultChan
	return result.Data, result.Error
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// CreateUser serializes access to user creation
func (m *DBManager) CreateUser(repo UserRepository, ctx context.Context, user *models.User) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, user)
	})
}

// UpdateUserPassword serializes access to password updates
func (m *DBManager) UpdateUserPassword(repo UserRepository, ctx context.Context, id string, passwordHash string) error {
	return m.ExecuteOperation(func() error {
		return repo.UpdatePassword(ctx, id, passwordHash)
	})
}

// CreateTodo serializes access to todo creation
func (m *DBManager) CreateTodo(repo TodoRepository, ctx context.Context, todo *models.Todo) error {
	return m.ExecuteOperation(func() error {
		return repo.Create(ctx, todo)
	})
}

// UpdateTodo serializes access to todo updates
func (m *DBManager) UpdateTodo(repo TodoRepository, ctx context.Context, todo *models.Todo) error {
	return m.ExecuteOperation(func() error {
		return repo.Update(ctx, todo)
	})
}

// DeleteTodo serializes access to todo deletion
func (m *DBManager) DeleteTodo(repo TodoRepository, ctx context.Context, id string, userID string) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteByID(ctx, id, userID)
	})
}

// ClearCompletedTodos serializes access to bulk deletion of completed todos
func (m *DBManager) ClearCompletedTodos(repo TodoRepository, ctx context.Context, userID string) (int64, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.DeleteCompletedByUserID(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}
