package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.log")

	logger, err := New(path, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("review drafted")
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"review drafted"`) {
		t.Errorf("expected JSON record in file, got %q", b)
	}
	if strings.Contains(string(b), "hidden at info level") {
		t.Error("debug record written at production level")
	}
}

func TestNewDevelopmentLevel(t *testing.T) {
	logger, err := New("", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Error("development logger should enable debug")
	}
}
