// Package neynar is a minimal client for the Neynar v2 Farcaster API,
// covering the handful of endpoints castsweep needs: following-list
// enumeration, follow/unfollow mutations, and signer/user lookups.
package neynar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/ratelimit"
)

const defaultBaseURL = "https://api.neynar.com/v2/farcaster"

// Config holds the credentials required to talk to Neynar. Both secrets
// must be present in the environment; construction fails otherwise.
type Config struct {
	APIKey     string `env:"NEYNAR_API_KEY,required"`
	SignerUUID string `env:"NEYNAR_SIGNER_UUID,required"`
	BaseURL    string `env:"NEYNAR_BASE_URL" envDefault:"https://api.neynar.com/v2/farcaster"`
}

// ConfigFromEnv loads Config from process environment variables.
func ConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

type Client struct {
	cli        *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	signerUUID string

	// pageLimiter paces pagination requests so a large following-list
	// doesn't trip Neynar's rate limits.
	pageLimiter ratelimit.Limiter
}

type Args struct {
	Config *Config
	Logger *slog.Logger
}

func NewClient(args *Args) (*Client, error) {
	if args.Config == nil {
		return nil, fmt.Errorf("neynar: config is required")
	}
	if args.Config.APIKey == "" {
		return nil, fmt.Errorf("neynar: NEYNAR_API_KEY is required")
	}
	if args.Config.SignerUUID == "" {
		return nil, fmt.Errorf("neynar: NEYNAR_SIGNER_UUID is required")
	}

	if args.Logger == nil {
		args.Logger = slog.Default()
	}

	baseURL := args.Config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		cli: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:      args.Logger,
		baseURL:     baseURL,
		apiKey:      args.Config.APIKey,
		signerUUID:  args.Config.SignerUUID,
		pageLimiter: ratelimit.New(10),
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api_key", c.apiKey)

	return req, nil
}

type signerResponse struct {
	FID int64 `json:"fid"`
}

// GetMyFID resolves the signer credential to the numeric identity it acts
// for. An error here means the credentials are missing or wrong, and
// nothing depending on the caller's own FID can proceed.
func (c *Client) GetMyFID(ctx context.Context) (int64, error) {
	req, err := c.newRequest(ctx, "GET", "/signer/?signer_uuid="+url.QueryEscape(c.signerUUID), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("signer lookup returned non-200 response code: %d", resp.StatusCode)
	}

	var signer signerResponse
	if err := json.NewDecoder(resp.Body).Decode(&signer); err != nil {
		return 0, fmt.Errorf("error decoding signer response: %w", err)
	}

	if signer.FID == 0 {
		return 0, fmt.Errorf("signer response did not contain a fid")
	}

	return signer.FID, nil
}

type userResponse struct {
	User *User `json:"user"`
}

// GetUser looks up a single profile by FID.
func (c *Client) GetUser(ctx context.Context, fid int64) (*User, error) {
	req, err := c.newRequest(ctx, "GET", "/user?fid="+strconv.FormatInt(fid, 10), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("user lookup returned non-200 response code: %d", resp.StatusCode)
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("error decoding user response: %w", err)
	}

	return ur.User, nil
}
