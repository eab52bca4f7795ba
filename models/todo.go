package models

import "time"

// Todo represents a single task record owned by one user
type Todo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoFilter selects which todos a list operation returns
type TodoFilter string

const (
	TodoFilterAll       TodoFilter = "all"
	TodoFilterPending   TodoFilter = "pending"
	TodoFilterCompleted TodoFilter = "completed"
)

// Valid reports whether the filter is one of the known values
func (f TodoFilter) Valid() bool {
	switch f {
	case TodoFilterAll, TodoFilterPending, TodoFilterCompleted:
		return true
	}
	return false
}

// TodoCounts holds per-user todo totals, always computed over all rows
// regardless of the active filter
type TodoCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
