package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"gotodo/internal/auditlog"
	"gotodo/internal/users"
	"gotodo/models"

	"github.com/sirupsen/logrus"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthHandlers exposes registration, login and password management over JSON
type AuthHandlers struct {
	Users    *users.UserService
	Tokens   *TokenService
	AuditLog *auditlog.AuditLogService
}

func NewAuthHandlers(userService *users.UserService, tokenService *TokenService, auditLog *auditlog.AuditLogService) *AuthHandlers {
	return &AuthHandlers{Users: userService, Tokens: tokenService, AuditLog: auditLog}
}

// RegisterHandler creates a new account. Duplicate usernames conflict.
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request format"})
		return
	}

	user, err := h.Users.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		case errors.Is(err, users.ErrUsernameTooShort), errors.Is(err, users.ErrPasswordTooShort):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		default:
			logrus.Errorf("Failed to register user: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to register user"})
		}
		return
	}

	h.AuditLog.Record(models.UserRegistered, user.ID, "", "username="+user.Username)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// LoginHandler verifies credentials and issues a signed token
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request format"})
		return
	}

	user, err := h.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid username or password"})
			return
		}
		logrus.Errorf("Failed to authenticate user: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to authenticate"})
		return
	}

	tokenString, err := h.Tokens.Generate(user.ID, user.Username)
	if err != nil {
		logrus.Errorf("Failed to generate token: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to generate token"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"token": tokenString})
}

// MeHandler returns the authenticated user's account
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}

	user, err := h.Users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		logrus.Errorf("Failed to load user %s: %v", claims.Subject, err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load user"})
		return
	}

	json.NewEncoder(w).Encode(user)
}

// ChangePasswordHandler rotates the authenticated user's password
func (h *AuthHandlers) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request format"})
		return
	}

	err := h.Users.ChangePassword(r.Context(), claims.Subject, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Current password is incorrect"})
		case errors.Is(err, users.ErrPasswordTooShort), errors.Is(err, users.ErrPasswordUnchanged):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		default:
			logrus.Errorf("Failed to change password for user %s: %v", claims.Subject, err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to change password"})
		}
		return
	}

	h.AuditLog.Record(models.PasswordChanged, claims.Subject, "", "")

	json.NewEncoder(w).Encode(map[string]string{"message": "Password changed successfully"})
}
