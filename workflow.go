package castsweep

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/ratelimit"
)

const runTimestampLayout = "20060102_150405"

// Summary is the outcome of one bulk run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int

	// FailedUsers carries the entries whose mutation failed, for manual
	// follow-up. Held in memory only; failures are never persisted.
	FailedUsers []FailedUser
}

type FailedUser struct {
	FID      int64
	Username string
}

// paceLimiter gates each mutation so successive calls are at least delay
// apart. The first Take is immediate and nothing waits after the last
// call, which matches "delay between entries, none after the final one".
func paceLimiter(delay time.Duration) ratelimit.Limiter {
	if delay <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(1, ratelimit.Per(delay))
}

func previewUsers(out io.Writer, handles []string, total int) {
	n := len(handles)
	if n > 5 {
		n = 5
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(out, "  %d. %s\n", i+1, handles[i])
	}
	if total > 5 {
		fmt.Fprintf(out, "  ... and %d more users\n", total-5)
	}
}

func logSummary(logger *slog.Logger, verb string, s *Summary) {
	logger.Info("run summary",
		"processed", s.Processed,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
	)

	if s.Failed > 0 {
		logger.Warn(fmt.Sprintf("some %ss failed, you may want to retry manually", verb))
		for _, u := range s.FailedUsers {
			logger.Info(fmt.Sprintf("failed %s", verb), "username", u.Username, "fid", u.FID)
		}
	}
}
