package integration

import (
	"strings"
	"testing"

	"gotodo/models"
	"gotodo/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.POST("/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	var user models.User
	testutils.AssertJSONResponse(t, resp, 201, &user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	// the password hash never leaves the server
	assert.Empty(t, user.PasswordHash)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.POST("/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = server.POST("/register", "", map[string]string{
		"username": "alice", "password": "othersecret",
	})
	testutils.AssertErrorResponse(t, resp, 409, "username already exists")
}

func TestRegister_Validation(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.POST("/register", "", map[string]string{
		"username": "ab", "password": "secret123",
	})
	testutils.AssertErrorResponse(t, resp, 400, "username must be at least")

	resp = server.POST("/register", "", map[string]string{
		"username": "alice", "password": "short",
	})
	testutils.AssertErrorResponse(t, resp, 400, "password must be at least")
}

func TestLogin(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.POST("/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = server.POST("/login", "", map[string]string{
		"username": "alice", "password": "secret123",
	})
	var body map[string]string
	testutils.AssertJSONResponse(t, resp, 200, &body)
	assert.NotEmpty(t, body["token"])

	resp = server.POST("/login", "", map[string]string{
		"username": "alice", "password": "wrongpass",
	})
	testutils.AssertErrorResponse(t, resp, 401, "Invalid username or password")

	// unknown users get the same response as a wrong password
	resp = server.POST("/login", "", map[string]string{
		"username": "nobody", "password": "secret123",
	})
	testutils.AssertErrorResponse(t, resp, 401, "Invalid username or password")
}

func TestMe(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()
	token := registerAndLogin(t, server, "alice")

	resp := server.GET("/me", token)
	var user models.User
	testutils.AssertJSONResponse(t, resp, 200, &user)
	assert.Equal(t, "alice", user.Username)
}

func TestAuth_MissingToken(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.GET("/me", "")
	testutils.AssertErrorResponse(t, resp, 401, "")

	resp = server.GET("/todos", "")
	testutils.AssertErrorResponse(t, resp, 401, "")
}

func TestAuth_TamperedToken(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()
	token := registerAndLogin(t, server, "alice")

	// flip a character in the signature segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	resp := server.GET("/me", tampered)
	testutils.AssertErrorResponse(t, resp, 401, "")
}

func TestAuth_ExpiredToken(t *testing.T) {
	server, cleanup := setupAPIServer(t, expiredTokenConfig())
	defer cleanup()

	resp := server.POST("/register", "", map[string]string{
		"username": "alice", "password": testutils.TestPassword,
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = server.POST("/login", "", map[string]string{
		"username": "alice", "password": testutils.TestPassword,
	})
	var body map[string]string
	testutils.AssertJSONResponse(t, resp, 200, &body)

	resp = server.GET("/me", body["token"])
	testutils.AssertErrorResponse(t, resp, 401, "")
}

func TestChangePassword(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()
	token := registerAndLogin(t, server, "alice")

	resp := server.POST("/change-password", token, map[string]string{
		"old_password": "wrongpass", "new_password": "newsecret",
	})
	testutils.AssertErrorResponse(t, resp, 401, "Current password is incorrect")

	resp = server.POST("/change-password", token, map[string]string{
		"old_password": testutils.TestPassword, "new_password": testutils.TestPassword,
	})
	testutils.AssertErrorResponse(t, resp, 400, "different from current password")

	resp = server.POST("/change-password", token, map[string]string{
		"old_password": testutils.TestPassword, "new_password": "newsecret",
	})
	var body map[string]string
	testutils.AssertJSONResponse(t, resp, 200, &body)

	resp = server.POST("/login", "", map[string]string{
		"username": "alice", "password": "newsecret",
	})
	testutils.AssertJSONResponse(t, resp, 200, &body)
	assert.NotEmpty(t, body["token"])

	resp = server.POST("/login", "", map[string]string{
		"username": "alice", "password": testutils.TestPassword,
	})
	testutils.AssertErrorResponse(t, resp, 401, "Invalid username or password")
}

func TestHealth(t *testing.T) {
	server, cleanup := setupServer(t)
	defer cleanup()

	resp := server.GET("/health", "")
	var body map[string]string
	testutils.AssertJSONResponse(t, resp, 200, &body)
	assert.Equal(t, "healthy", body["status"])
}
