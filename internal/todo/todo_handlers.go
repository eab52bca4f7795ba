package todo

import (
	"encoding/json"
	"errors"
	"net/http"

	"gotodo/db"
	"gotodo/internal/auth"
	"gotodo/models"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// TodoHandlers exposes todo CRUD over JSON. All handlers sit behind the auth
// middleware, which guarantees claims are present in the context.
type TodoHandlers struct {
	Service *TodoService
}

func NewTodoHandlers(service *TodoService) *TodoHandlers {
	return &TodoHandlers{Service: service}
}

// ListHandler returns the caller's todos, optionally filtered with
// ?filter=pending|completed
func (h *TodoHandlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	claims, _ := auth.ClaimsFromContext(r.Context())

	filter := models.TodoFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = models.TodoFilterAll
	}

	resp, err := h.Service.List(r.Context(), claims.Subject, filter)
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		logrus.Errorf("Failed to list todos: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to list todos"})
		return
	}

	json.NewEncoder(w).Encode(resp)
}

// CreateHandler inserts a new todo owned by the caller
func (h *TodoHandlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request format"})
		return
	}

	todo, err := h.Service.Create(r.Context(), claims.Subject, req)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		logrus.Errorf("Failed to create todo: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to create todo"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(todo)
}

// GetHandler returns a single todo owned by the caller
func (h *TodoHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := mux.Vars(r)["id"]

	todo, err := h.Service.Get(r.Context(), claims.Subject, id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	json.NewEncoder(w).Encode(todo)
}

// UpdateHandler applies partial field updates to a todo owned by the caller
func (h *TodoHandlers) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request format"})
		return
	}

	todo, err := h.Service.Update(r.Context(), claims.Subject, id, req)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		h.writeLookupError(w, err)
		return
	}

	json.NewEncoder(w).Encode(todo)
}

// DeleteHandler removes a todo owned by the caller
func (h *TodoHandlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.Service.Delete(r.Context(), claims.Subject, id); err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeLookupError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCompletedHandler removes all of the caller's completed todos
func (h *TodoHandlers) ClearCompletedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	claims, _ := auth.ClaimsFromContext(r.Context())

	cleared, err := h.Service.ClearCompleted(r.Context(), claims.Subject)
	if err != nil {
		logrus.Errorf("Failed to clear completed todos: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to clear completed todos"})
		return
	}

	json.NewEncoder(w).Encode(map[string]int64{"cleared": cleared})
}

func (h *TodoHandlers) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Todo not found"})
		return
	}
	logrus.Errorf("Todo operation failed: %v", err)
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
}
