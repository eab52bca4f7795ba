package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"gotodo/db"
	"gotodo/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
	}

	return testDB, cleanup
}

func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, func()) {
	testDB, cleanup := SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(testDB)
	return factory, cleanup
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:          "0",
		JwtKey:        []byte("test_jwt_secret_key_for_testing_only"),
		TokenTTL:      30 * time.Minute,
		SessionSecret: "test_session_secret",
		DatabaseName:  "todos_test",
		SQLitePath:    ":memory:",
		LogFilePath:   filepath.Join("data", "test.log"),
		LogLevel:      "error",
	}
}
