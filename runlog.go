package castsweep

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// newRunLogger builds the scoped logger for one workflow invocation. It
// writes to both the console and a per-run log file keyed by the owner's
// FID and the run timestamp. The returned close func flushes and closes
// the file; there is no process-global run logger.
func newRunLogger(dir, kind string, fid int64, timestamp string, console io.Writer) (*slog.Logger, func() error, error) {
	if console == nil {
		console = os.Stdout
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_log_%d_%s.txt", kind, fid, timestamp))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	h := slog.NewTextHandler(io.MultiWriter(console, f), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return slog.New(h), f.Close, nil
}
