package web

import (
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"gotodo/db"
	"gotodo/internal/auth"
	"gotodo/internal/todo"
	"gotodo/internal/users"
	"gotodo/models"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const sessionName = "gotodo-session"

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Message  string
	Category string
}

func init() {
	gob.Register(Flash{})
}

// WebHandler serves the server-rendered front-end. The session cookie holds
// the same signed token the JSON API issues; every page request re-validates
// it, so a session outliving its token falls back to the login page.
type WebHandler struct {
	todoService  *todo.TodoService
	userService  *users.UserService
	tokens       *auth.TokenService
	templates    *template.Template
	sessionStore *sessions.CookieStore
}

type PageData struct {
	Page     string
	User     *models.User
	Error    string
	Username string
	Todos    []*models.Todo
	Counts   models.TodoCounts
	Filter   string
	Flashes  []Flash
}

func NewWebHandler(
	todoService *todo.TodoService,
	userService *users.UserService,
	tokens *auth.TokenService,
	sessionSecret string,
) *WebHandler {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "Never"
			}
			return t.Format("2006-01-02 15:04")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseGlob("templates/*.html")
	if err != nil {
		panic(fmt.Sprintf("Failed to parse templates: %v", err))
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}

	return &WebHandler{
		todoService:  todoService,
		userService:  userService,
		tokens:       tokens,
		templates:    tmpl,
		sessionStore: store,
	}
}

// currentUser resolves the session's stored token to a user, or nil when the
// visitor is not (or no longer) authenticated
func (h *WebHandler) currentUser(r *http.Request) *models.User {
	session, _ := h.sessionStore.Get(r, sessionName)
	tokenStr, ok := session.Values["token"].(string)
	if !ok || tokenStr == "" {
		return nil
	}
	claims, err := h.tokens.Parse(tokenStr)
	if err != nil {
		return nil
	}
	user, err := h.userService.FindByID(r.Context(), claims.Subject)
	if err != nil {
		return nil
	}
	return user
}

func (h *WebHandler) flash(w http.ResponseWriter, r *http.Request, message, category string) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.AddFlash(Flash{Message: message, Category: category})
	session.Save(r, w)
}

func (h *WebHandler) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := h.sessionStore.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data PageData) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		logrus.Errorf("Template execution error for %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func redirectTarget(r *http.Request) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return "/"
}

// Page Handlers

func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	filter := models.TodoFilter(r.URL.Query().Get("filter"))
	if !filter.Valid() {
		filter = models.TodoFilterAll
	}

	resp, err := h.todoService.List(r.Context(), user.ID, filter)
	if err != nil {
		logrus.Errorf("Failed to list todos for index page: %v", err)
		http.Error(w, "Failed to load todos", http.StatusInternalServerError)
		return
	}

	h.render(w, "index.html", PageData{
		Page:    "index",
		User:    user,
		Todos:   resp.Todos,
		Counts:  resp.Counts,
		Filter:  string(filter),
		Flashes: h.popFlashes(w, r),
	})
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if h.currentUser(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.render(w, "login.html", PageData{Page: "login", Flashes: h.popFlashes(w, r)})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.userService.Authenticate(r.Context(), username, password)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, "login.html", PageData{
			Page:     "login",
			Error:    "Invalid username or password",
			Username: username,
		})
		return
	}

	tokenStr, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		logrus.Errorf("Failed to generate token: %v", err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values["token"] = tokenStr
	session.Save(r, w)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		h.render(w, "register.html", PageData{Page: "register", Flashes: h.popFlashes(w, r)})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	_, err := h.userService.Register(r.Context(), username, password)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			message = "Username already exists"
		case errors.Is(err, users.ErrUsernameTooShort), errors.Is(err, users.ErrPasswordTooShort):
			// message already reads well for the page
		default:
			logrus.Errorf("Failed to register user: %v", err)
			status = http.StatusInternalServerError
			message = "Registration failed, please try again"
		}
		w.WriteHeader(status)
		h.render(w, "register.html", PageData{Page: "register", Error: message, Username: username})
		return
	}

	h.flash(w, r, "Registration successful! Please login.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *WebHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		h.render(w, "change_password.html", PageData{Page: "change-password", User: user, Flashes: h.popFlashes(w, r)})
		return
	}

	oldPassword := r.FormValue("old_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if newPassword != confirmPassword {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "change_password.html", PageData{Page: "change-password", User: user, Error: "New passwords do not match"})
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, oldPassword, newPassword); err != nil {
		message := err.Error()
		if errors.Is(err, users.ErrInvalidCredentials) {
			message = "Current password is incorrect"
		}
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "change_password.html", PageData{Page: "change-password", User: user, Error: message})
		return
	}

	h.flash(w, r, "Password changed successfully!", "success")
	http.Redirect(w, r, "/change-password", http.StatusSeeOther)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Form Handlers

func (h *WebHandler) AddTodo(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	_, err := h.todoService.Create(r.Context(), user.ID, todo.CreateTodoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		if errors.Is(err, todo.ErrEmptyTitle) {
			h.flash(w, r, "Title cannot be empty", "error")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		logrus.Errorf("Failed to add todo: %v", err)
		http.Error(w, "Failed to add task", http.StatusInternalServerError)
		return
	}

	h.flash(w, r, "Task added successfully.", "success")
	http.Redirect(w, r, "/?filter=pending", http.StatusSeeOther)
}

func (h *WebHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := h.todoService.Toggle(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Todo not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("Failed to toggle todo %s: %v", id, err)
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

func (h *WebHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.todoService.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Todo not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("Failed to delete todo %s: %v", id, err)
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}

	h.flash(w, r, "Task deleted.", "success")
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

func (h *WebHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if _, err := h.todoService.ClearCompleted(r.Context(), user.ID); err != nil {
		logrus.Errorf("Failed to clear completed todos: %v", err)
		http.Error(w, "Failed to clear completed tasks", http.StatusInternalServerError)
		return
	}

	h.flash(w, r, "All completed tasks have been cleared.", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) Docs(w http.ResponseWriter, r *http.Request) {
	h.render(w, "docs.html", PageData{Page: "docs"})
}
