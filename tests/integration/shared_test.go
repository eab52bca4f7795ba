package integration

import (
	"path/filepath"
	"testing"
	"time"

	"gotodo/db"
	"gotodo/internal/auditlog"
	"gotodo/internal/auth"
	"gotodo/internal/config"
	"gotodo/internal/todo"
	"gotodo/internal/users"
	"gotodo/internal/web"
	"gotodo/middleware"
	"gotodo/tests/testutils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// setupAPIServer wires the full JSON API against a throwaway database file
func setupAPIServer(t *testing.T, cfg *config.Config) (*testutils.TestServer, func()) {
	sqlDB, dbCleanup := testutils.SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(sqlDB)
	dbManager := db.NewDBManager()

	auditLog, err := auditlog.NewAuditLogService(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, err)

	tokenService := auth.NewTokenService(cfg)
	userService := users.NewUserService(factory.NewUserRepository(), dbManager)
	todoService := todo.NewTodoService(factory.NewTodoRepository(), dbManager, auditLog)

	authHandlers := auth.NewAuthHandlers(userService, tokenService, auditLog)
	todoHandlers := todo.NewTodoHandlers(todoService)
	mw := middleware.NewMiddleware(tokenService)

	router := mux.NewRouter()
	web.SetupAPIRoutes(router, authHandlers, todoHandlers, mw, sqlDB)

	server := testutils.NewTestServer(t, router)
	cleanup := func() {
		server.Close()
		auditLog.Close()
		dbManager.Stop()
		dbCleanup()
	}
	return server, cleanup
}

func setupServer(t *testing.T) (*testutils.TestServer, func()) {
	return setupAPIServer(t, testutils.GetTestConfig())
}

// registerAndLogin creates an account and returns a fresh bearer token
func registerAndLogin(t *testing.T, server *testutils.TestServer, username string) string {
	resp := server.POST("/register", "", map[string]string{
		"username": username,
		"password": testutils.TestPassword,
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = server.POST("/login", "", map[string]string{
		"username": username,
		"password": testutils.TestPassword,
	})
	var body map[string]string
	testutils.AssertJSONResponse(t, resp, 200, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func expiredTokenConfig() *config.Config {
	cfg := testutils.GetTestConfig()
	cfg.TokenTTL = -1 * time.Minute
	return cfg
}
