package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const MainnetURL = "https://api.hyperliquid.xyz"

var ErrHTTPStatus = errors.New("unexpected http status")

// Client talks to the exchange's /info and /exchange endpoints. Requests are
// sent once; callers decide whether to try again on the next cycle.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	infoLimiter   *rate.Limiter
	actionLimiter *rate.Limiter
	log           *zap.SugaredLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit overrides the per-second request budgets.
func WithRateLimit(infoPerSec, actionsPerSec float64) Option {
	return func(c *Client) {
		c.infoLimiter = rate.NewLimiter(rate.Limit(infoPerSec), max(1, int(infoPerSec)))
		c.actionLimiter = rate.NewLimiter(rate.Limit(actionsPerSec), max(1, int(actionsPerSec)))
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		infoLimiter:   rate.NewLimiter(rate.Limit(20), 20),
		actionLimiter: rate.NewLimiter(rate.Limit(10), 10),
		log:           zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	lim := c.infoLimiter
	if path == "/exchange" {
		lim = c.actionLimiter
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.log.Debugw("http_request", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s -> %d: %s", ErrHTTPStatus, path, resp.StatusCode, truncate(respBody, 256))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
