package castsweep

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, closeLog, err := newRunLogger(dir, "unfollow", 42, "20260831_120000", &console)
	if err != nil {
		t.Fatalf("new run logger: %v", err)
	}

	logger.Info("hello from the run", "fid", 42)

	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "hello from the run") {
		t.Fatal("console output missing log line")
	}

	path := filepath.Join(dir, "unfollow_log_42_20260831_120000.txt")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "hello from the run") {
		t.Fatal("log file missing log line")
	}
}
