package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger("info", path)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	LogError(logger, "save session", errors.New("disk full"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "disk full") || !strings.Contains(string(data), "save session") {
		t.Fatalf("log missing entry: %s", data)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud", filepath.Join(t.TempDir(), "x.log")); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLogErrorIgnoresNil(t *testing.T) {
	LogError(nil, "noop", errors.New("x"))
	LogError(nil, "noop", nil)
}
