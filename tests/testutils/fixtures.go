package testutils

import (
	"fmt"
	"sync/atomic"
	"time"

	"gotodo/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var userCounter int64

// TestPassword is the plaintext behind every fixture user's hash
const TestPassword = "password123"

func CreateTestUser() *models.User {
	// MinCost keeps fixtures fast; production hashing uses a slow cost
	hash, _ := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	n := atomic.AddInt64(&userCounter, 1)

	return &models.User{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("testuser%d", n),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
}

func CreateTestTodo(userID string) *models.Todo {
	now := time.Now()
	return &models.Todo{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       "Test Todo",
		Description: "Test description",
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func CreateTestTodoWithTitle(userID, title string) *models.Todo {
	todo := CreateTestTodo(userID)
	todo.Title = title
	return todo
}
