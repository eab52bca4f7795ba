package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gotodo/db"
	"gotodo/internal/auditlog"
	"gotodo/internal/auth"
	"gotodo/internal/config"
	"gotodo/internal/todo"
	"gotodo/internal/users"
	"gotodo/internal/web"
	"gotodo/middleware"

	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		logger.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		logger.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Create repositories and the write-serializing manager
	repoFactory := db.NewRepositoryFactory(sqliteDB)
	userRepo := repoFactory.NewUserRepository()
	todoRepo := repoFactory.NewTodoRepository()
	dbManager := db.NewDBManager()
	defer dbManager.Stop()

	// Audit log file for mutating operations
	auditLog, err := auditlog.NewAuditLogService(cfg.LogFilePath)
	if err != nil {
		logger.Fatalf("Failed to open audit log: %v", err)
	}
	defer auditLog.Close()

	// Initialize services and handlers
	tokenService := auth.NewTokenService(cfg)
	userService := users.NewUserService(userRepo, dbManager)
	todoService := todo.NewTodoService(todoRepo, dbManager, auditLog)

	authHandlers := auth.NewAuthHandlers(userService, tokenService, auditLog)
	todoHandlers := todo.NewTodoHandlers(todoService)
	mw := middleware.NewMiddleware(tokenService)

	webHandler := web.NewWebHandler(todoService, userService, tokenService, cfg.SessionSecret)
	router := webHandler.SetupRoutes(authHandlers, todoHandlers, mw, sqliteDB)

	handler := middleware.SetupCORS()(middleware.LoggingMiddleware(logger)(router))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Run the server until interrupted, then drain in-flight requests
	done := make(chan bool, 1)
	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		logger.Info("Shutting down gracefully...")
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxTimeout); err != nil {
			logger.Errorf("Server forced to shutdown with error: %v", err)
		}
		done <- true
	}()

	logger.Infof("Starting server on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}

	<-done
	logger.Info("Server exiting")
}
