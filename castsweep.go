package castsweep

import (
	"errors"
	"log/slog"
	"net/http"

	"castsweep/neynar"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrCanceled is returned by the workflows when the user declines the
// confirmation prompt. It is a clean abort, not a failure.
var ErrCanceled = errors.New("operation cancelled by user")

type Castsweep struct {
	logger *slog.Logger
	client *neynar.Client

	dataDir     string
	metricsAddr string
}

type Args struct {
	Logger      *slog.Logger
	Config      *neynar.Config
	DataDir     string
	MetricsAddr string
}

func New(args *Args) (*Castsweep, error) {
	if args.Logger == nil {
		args.Logger = slog.Default()
	}

	if args.DataDir == "" {
		args.DataDir = "data"
	}

	client, err := neynar.NewClient(&neynar.Args{
		Config: args.Config,
		Logger: args.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Castsweep{
		logger:      args.Logger,
		client:      client,
		dataDir:     args.DataDir,
		metricsAddr: args.MetricsAddr,
	}, nil
}

func (c *Castsweep) maybeStartMetrics() {
	if c.metricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		c.logger.Info("starting metrics server", "addr", c.metricsAddr)
		if err := http.ListenAndServe(c.metricsAddr, mux); err != nil {
			c.logger.Error("metrics server failed", "error", err)
		}
	}()
}
