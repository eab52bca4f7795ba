package web

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"gotodo/internal/auth"
	"gotodo/internal/todo"
	"gotodo/middleware"

	"github.com/gorilla/mux"
)

const uuidPattern = "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"

// SetupAPIRoutes registers the JSON API. The register/login/change-password
// routes carry a JSON content-type matcher so the web form posts to the same
// paths fall through to the page handlers.
func SetupAPIRoutes(
	r *mux.Router,
	authHandlers *auth.AuthHandlers,
	todoHandlers *todo.TodoHandlers,
	mw *middleware.Middleware,
	sqlDB *sql.DB,
) {
	r.HandleFunc("/register", authHandlers.RegisterHandler).Methods("POST").HeadersRegexp("Content-Type", "application/json")
	r.HandleFunc("/login", authHandlers.LoginHandler).Methods("POST").HeadersRegexp("Content-Type", "application/json")
	r.HandleFunc("/health", HealthHandler(sqlDB)).Methods("GET")

	r.HandleFunc("/me", mw.AuthMiddleware(authHandlers.MeHandler)).Methods("GET")
	r.HandleFunc("/change-password", mw.AuthMiddleware(authHandlers.ChangePasswordHandler)).Methods("POST").HeadersRegexp("Content-Type", "application/json")

	r.HandleFunc("/todos", mw.AuthMiddleware(todoHandlers.ListHandler)).Methods("GET")
	r.HandleFunc("/todos", mw.AuthMiddleware(todoHandlers.CreateHandler)).Methods("POST")
	r.HandleFunc("/todos/clear-completed", mw.AuthMiddleware(todoHandlers.ClearCompletedHandler)).Methods("POST")
	r.HandleFunc("/todos/{id:"+uuidPattern+"}", mw.AuthMiddleware(todoHandlers.GetHandler)).Methods("GET")
	r.HandleFunc("/todos/{id:"+uuidPattern+"}", mw.AuthMiddleware(todoHandlers.UpdateHandler)).Methods("PUT")
	r.HandleFunc("/todos/{id:"+uuidPattern+"}", mw.AuthMiddleware(todoHandlers.DeleteHandler)).Methods("DELETE")
}

// SetupRoutes builds the full route table: JSON API plus the server-rendered
// pages and static assets
func (h *WebHandler) SetupRoutes(
	authHandlers *auth.AuthHandlers,
	todoHandlers *todo.TodoHandlers,
	mw *middleware.Middleware,
	sqlDB *sql.DB,
) *mux.Router {
	r := mux.NewRouter()

	// JSON API first so content-type matchers take precedence
	SetupAPIRoutes(r, authHandlers, todoHandlers, mw, sqlDB)

	// Web pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("GET", "POST")
	r.HandleFunc("/register", h.Register).Methods("GET", "POST")
	r.HandleFunc("/change-password", h.ChangePassword).Methods("GET", "POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/docs", h.Docs).Methods("GET")

	// Form actions
	r.HandleFunc("/add_todo", h.AddTodo).Methods("POST")
	r.HandleFunc("/toggle_todo/{id:"+uuidPattern+"}", h.ToggleTodo).Methods("POST")
	r.HandleFunc("/delete_todo/{id:"+uuidPattern+"}", h.DeleteTodo).Methods("POST")
	r.HandleFunc("/delete_all_completed", h.ClearCompleted).Methods("POST")

	// Static assets, including the OpenAPI document served under /docs
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return r
}

// HealthHandler reports whether the database file is reachable
func HealthHandler(sqlDB *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := sqlDB.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "down", "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}
