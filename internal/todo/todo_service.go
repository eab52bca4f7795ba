package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gotodo/db"
	"gotodo/internal/auditlog"
	"gotodo/models"
)

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidFilter = errors.New("filter must be one of: all, pending, completed")
)

// CreateTodoRequest holds the data needed to create a new todo
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTodoRequest holds partial field updates. Pointer fields distinguish
// an omitted field from one set to its zero value.
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoListResponse bundles a filtered listing with counts over all rows
type TodoListResponse struct {
	Todos  []*models.Todo    `json:"todos"`
	Counts models.TodoCounts `json:"counts"`
}

// TodoService implements owner-scoped todo operations. Every successful
// mutation is recorded in the audit log.
type TodoService struct {
	repo      db.TodoRepository
	dbManager *db.DBManager
	auditLog  *auditlog.AuditLogService
}

func NewTodoService(repo db.TodoRepository, dbManager *db.DBManager, auditLog *auditlog.AuditLogService) *TodoService {
	return &TodoService{repo: repo, dbManager: dbManager, auditLog: auditLog}
}

// Create inserts a new todo owned by userID and returns the stored record
func (s *TodoService) Create(ctx context.Context, userID string, req CreateTodoRequest) (*models.Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now()
	todo := &models.Todo{
		ID:          db.GenerateID(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.dbManager.CreateTodo(s.repo, ctx, todo); err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}

	s.auditLog.Record(models.TodoCreated, userID, todo.ID, "title="+todo.Title)
	return todo, nil
}

// List returns the user's todos narrowed by filter, along with counts over
// all of the user's rows
func (s *TodoService) List(ctx context.Context, userID string, filter models.TodoFilter) (*TodoListResponse, error) {
	if !filter.Valid() {
		return nil, ErrInvalidFilter
	}

	todos, err := s.repo.FindAllByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}
	counts, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting todos: %w", err)
	}

	return &TodoListResponse{Todos: todos, Counts: *counts}, nil
}

// Get returns a single todo owned by userID. Foreign and missing rows both
// surface as db.ErrNotFound.
func (s *TodoService) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	return s.repo.FindByID(ctx, id, userID)
}

// Update applies partial field updates to a todo owned by userID
func (s *TodoService) Update(ctx context.Context, userID, id string, req UpdateTodoRequest) (*models.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		todo.Title = title
	}
	if req.Description != nil {
		todo.Description = strings.TrimSpace(*req.Description)
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAt = time.Now()

	if err := s.dbManager.UpdateTodo(s.repo, ctx, todo); err != nil {
		return nil, err
	}

	s.auditLog.Record(models.TodoUpdated, userID, todo.ID, "")
	return todo, nil
}

// Toggle flips a todo's completion flag
func (s *TodoService) Toggle(ctx context.Context, userID, id string) (*models.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	completed := !todo.Completed
	return s.Update(ctx, userID, id, UpdateTodoRequest{Completed: &completed})
}

// Delete removes a todo owned by userID
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := s.dbManager.DeleteTodo(s.repo, ctx, id, userID); err != nil {
		return err
	}
	s.auditLog.Record(models.TodoDeleted, userID, id, "")
	return nil
}

// ClearCompleted removes every completed todo owned by userID and returns
// how many were removed
func (s *TodoService) ClearCompleted(ctx context.Context, userID string) (int64, error) {
	cleared, err := s.dbManager.ClearCompletedTodos(s.repo, ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error clearing completed todos: %w", err)
	}
	if cleared > 0 {
		s.auditLog.Record(models.TodosCleared, userID, "", fmt.Sprintf("count=%d", cleared))
	}
	return cleared, nil
}
