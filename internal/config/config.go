package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	JwtKey        []byte
	TokenTTL      time.Duration
	SessionSecret string
	DatabaseName  string
	SQLitePath    string
	LogFilePath   string
	LogLevel      string
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is not set in the environment")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set in the environment")
	}

	databaseName := getEnv("DATABASE_NAME", "todos")

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		// Default to a data directory in the current directory
		sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
	}

	ttlMinutes := 30
	if raw := os.Getenv("TOKEN_TTL_MINUTES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %q", raw)
		}
		ttlMinutes = parsed
	}

	return &Config{
		Port:          getEnv("PORT", "3001"),
		JwtKey:        []byte(jwtSecret),
		TokenTTL:      time.Duration(ttlMinutes) * time.Minute,
		SessionSecret: sessionSecret,
		DatabaseName:  databaseName,
		SQLitePath:    sqlitePath,
		LogFilePath:   getEnv("LOG_FILE", filepath.Join("data", "todo.log")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
