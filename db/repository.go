package db

import (
	"context"
	"database/sql"
	"errors"

	"gotodo/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for user operations
type UserRepository interface {
	Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// TodoRepository defines the interface for todo operations. Every lookup and
// mutation is scoped by the owning user; rows belonging to other users behave
// as if they do not exist.
type TodoRepository interface {
	Repository
	Create(ctx context.Context, todo *models.Todo) error
	FindByID(ctx context.Context, id string, userID string) (*models.Todo, error)
	FindAllByUserID(ctx context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error)
	CountByUserID(ctx context.Context, userID string) (*models.TodoCounts, error)
	Update(ctx context.Context, todo *models.Todo) error
	DeleteByID(ctx context.Context, id string, userID string) error
	DeleteCompletedByUserID(ctx context.Context, userID string) (int64, error)
}

// RepositoryFactory creates repositories backed by the SQLite database
type RepositoryFactory struct {
	SQLiteDB *sql.DB
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{SQLiteDB: sqliteDB}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	return NewSQLiteUserRepository(f.SQLiteDB)
}

// NewTodoRepository creates a new todo repository
func (f *RepositoryFactory) NewTodoRepository() TodoRepository {
	return NewSQLiteTodoRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
