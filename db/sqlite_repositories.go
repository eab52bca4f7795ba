package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gotodo/models"

	"github.com/mattn/go-sqlite3"
)

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user. A username collision surfaces as ErrDuplicate.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByUsername finds a user by username
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// UpdatePassword replaces the stored password hash for a user
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

// SQLiteTodoRepository implements the TodoRepository interface for SQLite
type SQLiteTodoRepository struct {
	db *sql.DB
}

// NewSQLiteTodoRepository creates a new SQLiteTodoRepository
func NewSQLiteTodoRepository(db *sql.DB) *SQLiteTodoRepository {
	return &SQLiteTodoRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteTodoRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new todo owned by todo.UserID
func (r *SQLiteTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `INSERT INTO todos (id, user_id, title, description, completed, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting todo: %w", err)
	}
	return nil
}

// FindByID finds a todo by ID, scoped to its owner. A todo owned by another
// user is reported as ErrNotFound so existence never leaks.
func (r *SQLiteTodoRepository) FindByID(ctx context.Context, id string, userID string) (*models.Todo, error) {
	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
			  FROM todos WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	var todo models.Todo
	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed,
		&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning todo: %w", err)
	}
	return &todo, nil
}

// FindAllByUserID finds all todos owned by userID in persisted order,
// optionally narrowed to pending or completed rows
func (r *SQLiteTodoRepository) FindAllByUserID(ctx context.Context, userID string, filter models.TodoFilter) ([]*models.Todo, error) {
	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
			  FROM todos WHERE user_id = ?`
	switch filter {
	case models.TodoFilterPending:
		query += ` AND completed = 0`
	case models.TodoFilterCompleted:
		query += ` AND completed = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		var todo models.Todo
		err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed,
			&todo.CreatedAt, &todo.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning todo: %w", err)
		}
		todos = append(todos, &todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// CountByUserID returns todo totals for a user over all rows
func (r *SQLiteTodoRepository) CountByUserID(ctx context.Context, userID string) (*models.TodoCounts, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM todos WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)

	var counts models.TodoCounts
	if err := row.Scan(&counts.Total, &counts.Completed); err != nil {
		return nil, fmt.Errorf("error counting todos: %w", err)
	}
	counts.Pending = counts.Total - counts.Completed
	return &counts, nil
}

// Update persists the mutable fields of a todo, scoped to its owner
func (r *SQLiteTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	query := `UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.UpdatedAt,
		todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("error updating todo: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a todo, scoped to its owner
func (r *SQLiteTodoRepository) DeleteByID(ctx context.Context, id string, userID string) error {
	query := `DELETE FROM todos WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting todo: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompletedByUserID removes every completed todo owned by userID and
// returns how many rows were removed
func (r *SQLiteTodoRepository) DeleteCompletedByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM todos WHERE user_id = ? AND completed = 1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting completed todos: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking affected rows: %w", err)
	}
	return rows, nil
}

func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
