package castsweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

type RefollowOptions struct {
	DryRun bool
	Delay  time.Duration

	// StartFrom skips the first N rows, for resuming a partially
	// completed replay.
	StartFrom int

	// CSVPath overrides record-file discovery. When empty, the most
	// recent record file for the caller's FID is used.
	CSVPath string

	Stdin  io.Reader
	Stdout io.Writer
}

// RunRefollow replays a record file produced by RunUnfollow, re-following
// each account in the order it was unfollowed. The record file is never
// modified, so a replay can be repeated or resumed with StartFrom.
func (c *Castsweep) RunRefollow(ctx context.Context, opts RefollowOptions) (*Summary, error) {
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

	logger, closeLog, err := newRunLogger(c.dataDir, "refollow", myFID, timestamp, opts.Stdout)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	logger.Info("resolved own fid", "fid", myFID)

	path := opts.CSVPath
	if path == "" {
		path, err = LatestRecordFile(c.dataDir, myFID)
		if errors.Is(err, ErrNoRecords) {
			return nil, fmt.Errorf("no record files found for fid %d in %s, run the unfollow command first", myFID, c.dataDir)
		}
		if err != nil {
			return nil, err
		}
		logger.Info("using most recent record file", "file", path)
	}

	records, err := LoadRecords(path)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded users from record file", "count", len(records), "file", path)

	if opts.StartFrom > 0 {
		if opts.StartFrom >= len(records) {
			return nil, fmt.Errorf("start index %d is out of range (max: %d)", opts.StartFrom, len(records)-1)
		}
		records = records[opts.StartFrom:]
		logger.Info("resuming replay", "start_from", opts.StartFrom, "remaining", len(records))
	}

	fmt.Fprintf(opts.Stdout, "\nFound %d users to refollow:\n", len(records))
	handles := make([]string, 0, 5)
	for i := 0; i < len(records) && i < 5; i++ {
		handles = append(handles, fmt.Sprintf("@%s (%s)", records[i].Username, records[i].DisplayName))
	}
	previewUsers(opts.Stdout, handles, len(records))

	var message string
	if opts.DryRun {
		message = fmt.Sprintf("DRY RUN: Would refollow all %d users (no actual changes will be made)", len(records))
	} else {
		message = fmt.Sprintf("WARNING: This will refollow all %d users. Are you sure?", len(records))
	}

	if !confirmAction(opts.Stdin, opts.Stdout, message) {
		logger.Info("operation cancelled by user")
		return nil, ErrCanceled
	}

	limiter := paceLimiter(opts.Delay)
	summary := &Summary{}

	for i, rec := range records {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		limiter.Take()

		logger.Info("processing user",
			"progress", fmt.Sprintf("%d/%d", i+1, len(records)),
			"username", rec.Username,
			"fid", rec.FID,
		)

		summary.Processed++

		if !c.client.FollowUser(ctx, rec.FID, opts.DryRun) {
			mutationsCounter.WithLabelValues("follow", "error").Inc()
			summary.Failed++
			summary.FailedUsers = append(summary.FailedUsers, FailedUser{FID: rec.FID, Username: rec.Username})
			logger.Error("failed to refollow user", "username", rec.Username, "fid", rec.FID)
			continue
		}

		mutationsCounter.WithLabelValues("follow", "ok").Inc()
		summary.Succeeded++
		logger.Info("successfully refollowed user", "username", rec.Username, "fid", rec.FID)
	}

	logSummary(logger, "refollow", summary)

	return summary, nil
}
