package castsweep

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

type UnfollowOptions struct {
	DryRun bool
	Delay  time.Duration

	// Limit caps how many entries are processed, for bounded test runs.
	// Zero means no cap.
	Limit int

	// Stdin/Stdout drive the confirmation prompt and preview. Defaulted
	// to the process streams when nil.
	Stdin  io.Reader
	Stdout io.Writer
}

// RunUnfollow enumerates everyone the authenticated account follows and
// unfollows them one at a time, appending each success to the run's
// record file the moment the call returns. A crash partway through
// leaves a valid partial record consumable by RunRefollow.
func (c *Castsweep) RunUnfollow(ctx context.Context, opts UnfollowOptions) (*Summary, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	c.maybeStartMetrics()

	myFID, err := c.client.GetMyFID(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not determine your fid, check your api credentials: %w", err)
	}

	timestamp := time.Now().Format(runTimestampLayout)

	logger, closeLog, err := newRunLogger(c.dataDir, "unfollow", myFID, timestamp, opts.Stdout)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	logger.Info("resolved own fid", "fid", myFID)

	users, err := c.client.GetFollowing(ctx, myFID)
	if err != nil {
		return nil, fmt.Errorf("error fetching following list: %w", err)
	}

	if len(users) == 0 {
		logger.Info("you're not following anyone")
		return &Summary{}, nil
	}

	logger.Info("found users you're following", "count", len(users))

	if opts.Limit > 0 && opts.Limit < len(users) {
		logger.Info("limiting run", "limit", opts.Limit, "total", len(users))
		users = users[:opts.Limit]
	}

	fmt.Fprintf(opts.Stdout, "\nYou're currently following %d users:\n", len(users))
	handles := make([]string, 0, 5)
	for i := 0; i < len(users) && i < 5; i++ {
		handles = append(handles, fmt.Sprintf("@%s (%s)", users[i].Username, users[i].DisplayName))
	}
	previewUsers(opts.Stdout, handles, len(users))

	var message string
	if opts.DryRun {
		message = fmt.Sprintf("DRY RUN: Would unfollow all %d users (no actual changes will be made)", len(users))
	} else {
		message = fmt.Sprintf("WARNING: This will unfollow all %d users. Are you sure?", len(users))
	}

	if !confirmAction(opts.Stdin, opts.Stdout, message) {
		logger.Info("operation cancelled by user")
		return nil, ErrCanceled
	}

	writer := NewRecordWriter(c.dataDir, myFID, timestamp)
	defer writer.Close()

	limiter := paceLimiter(opts.Delay)
	summary := &Summary{}

	for i, user := range users {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		limiter.Take()

		logger.Info("processing user",
			"progress", fmt.Sprintf("%d/%d", i+1, len(users)),
			"username", user.Username,
			"fid", user.FID,
		)

		summary.Processed++

		if !c.client.UnfollowUser(ctx, user.FID, opts.DryRun) {
			mutationsCounter.WithLabelValues("unfollow", "error").Inc()
			summary.Failed++
			summary.FailedUsers = append(summary.FailedUsers, FailedUser{FID: user.FID, Username: user.Username})
			logger.Error("failed to unfollow user", "username", user.Username, "fid", user.FID)
			continue
		}

		mutationsCounter.WithLabelValues("unfollow", "ok").Inc()
		summary.Succeeded++
		logger.Info("successfully unfollowed user", "username", user.Username, "fid", user.FID)

		// A dry run makes no claim of action taken, so nothing is
		// persisted for it.
		if opts.DryRun {
			continue
		}

		if err := writer.Append(user); err != nil {
			logger.Error("failed to save user to record file", "username", user.Username, "error", err)
			continue
		}
		recordsWritten.Inc()
		logger.Info("saved user to record file", "username", user.Username, "file", writer.Path())
	}

	logSummary(logger, "unfollow", summary)

	if !opts.DryRun && summary.Succeeded > 0 {
		logger.Info("all unfollowed users saved", "file", writer.Path())
	}

	return summary, nil
}
