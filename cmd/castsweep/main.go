package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"castsweep"
	"castsweep/neynar"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "castsweep",
		Usage: "bulk unfollow and refollow for a farcaster account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				EnvVars: []string{"CASTSWEEP_DATA_DIR"},
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"CASTSWEEP_LOG_LEVEL"},
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				EnvVars: []string{"CASTSWEEP_METRICS_ADDR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "unfollow",
				Usage:  "unfollow everyone you follow, recording each to a csv",
				Action: runUnfollow,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "preview actions without performing them",
					},
					&cli.Float64Flag{
						Name:  "delay",
						Usage: "delay between unfollows in seconds",
						Value: 1.0,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "process only the first N users",
					},
				},
			},
			{
				Name:   "refollow",
				Usage:  "refollow users from a previous unfollow run",
				Action: runRefollow,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "preview actions without performing them",
					},
					&cli.Float64Flag{
						Name:  "delay",
						Usage: "delay between follows in seconds",
						Value: 1.0,
					},
					&cli.IntFlag{
						Name:  "start-from",
						Usage: "start from this row index (useful for resuming)",
					},
					&cli.StringFlag{
						Name:  "csv-file",
						Usage: "record file to read (default: most recent for your fid)",
					},
				},
			},
			{
				Name:   "check",
				Usage:  "verify api credentials",
				Action: runCheck,
			},
		},
		ErrWriter: os.Stderr,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService(cmd *cli.Context) (*castsweep.Castsweep, error) {
	var level slog.Level
	switch cmd.String("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := neynar.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return castsweep.New(&castsweep.Args{
		Logger:      l,
		Config:      cfg,
		DataDir:     cmd.String("data-dir"),
		MetricsAddr: cmd.String("metrics-addr"),
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		exitSignals := make(chan os.Signal, 1)
		signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)

		<-exitSignals
		cancel()
	}()

	return ctx, cancel
}

func runUnfollow(cmd *cli.Context) error {
	c, err := newService(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context)
	defer cancel()

	_, err = c.RunUnfollow(ctx, castsweep.UnfollowOptions{
		DryRun: cmd.Bool("dry-run"),
		Delay:  time.Duration(cmd.Float64("delay") * float64(time.Second)),
		Limit:  cmd.Int("limit"),
	})
	if errors.Is(err, castsweep.ErrCanceled) {
		return nil
	}
	return err
}

func runRefollow(cmd *cli.Context) error {
	c, err := newService(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context)
	defer cancel()

	_, err = c.RunRefollow(ctx, castsweep.RefollowOptions{
		DryRun:    cmd.Bool("dry-run"),
		Delay:     time.Duration(cmd.Float64("delay") * float64(time.Second)),
		StartFrom: cmd.Int("start-from"),
		CSVPath:   cmd.String("csv-file"),
	})
	if errors.Is(err, castsweep.ErrCanceled) {
		return nil
	}
	return err
}

func runCheck(cmd *cli.Context) error {
	c, err := newService(cmd)
	if err != nil {
		return err
	}

	return c.RunCheck(cmd.Context, os.Stdout)
}
