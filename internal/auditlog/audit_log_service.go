package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gotodo/models"

	"github.com/sirupsen/logrus"
)

// AuditLogService appends a human-readable line to a log file for every
// successful mutating operation. Writing the log is best-effort: a failed
// append is reported at warn level and never fails the originating request.
type AuditLogService struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewAuditLogService opens (or creates) the append-only log file
func NewAuditLogService(path string) (*AuditLogService, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for audit log: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &AuditLogService{file: file, path: path}, nil
}

// Record appends one timestamped entry. todoID and detail may be empty for
// events that have no record or extra context.
func (s *AuditLogService) Record(event models.EAuditEventType, userID, todoID, detail string) {
	line := fmt.Sprintf("%s | %s | user=%s", time.Now().Format("2006-01-02 15:04:05"), event, userID)
	if todoID != "" {
		line += fmt.Sprintf(" todo=%s", todoID)
	}
	if detail != "" {
		line += fmt.Sprintf(" | %s", detail)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		logrus.Warnf("Failed to write audit log entry to %s: %v", s.path, err)
	}
}

// Close closes the underlying log file
func (s *AuditLogService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
