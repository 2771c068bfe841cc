package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalsSafeBeforeInit(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("logger globals must be usable before Init")
	}
	Sugar.Info("noop") // must not panic
}

func TestInitWritesLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "fleshring.log")
	if err := Init("info", logFile); err != nil {
		t.Fatal(err)
	}
	defer Sync()

	Sugar.Infow("processed ring", "name", "ankle", "faces", 42)
	Sugar.Debug("hidden at info level")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "processed ring") {
		t.Error("info entry missing from log file")
	}
	if strings.Contains(text, "hidden at info level") {
		t.Error("debug entry leaked through info level")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/fleshring.log")
	if cfg.Path != "/tmp/fleshring.log" {
		t.Errorf("path = %s", cfg.Path)
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		t.Errorf("rotation settings must be positive: %+v", cfg)
	}
}
