// Package brandlight is the client for the Brandlight partner API. It covers
// the paginated query export, download status reporting and a connectivity
// probe. A Client is constructed per incoming request around that request's
// TokenHolder; nothing in it is shared across requests.
package brandlight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avichaydahan/brandlight-reports/auth"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
)

const (
	DefaultPageSize       = 100
	DefaultBatchSize      = 15
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	BaseURL        string
	PageSize       int
	BatchSize      int
	RequestTimeout time.Duration
}

type Client struct {
	cfg   Config
	http  *http.Client
	token *auth.TokenHolder
}

func New(cfg Config, token *auth.TokenHolder) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:   cfg,
		http:  &http.Client{},
		token: token,
	}
}

// do issues one API call with the request-scoped bearer token and the
// per-call timeout. The timeout cancels only this call; sibling calls in the
// same batch keep running.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	token, err := c.token.Token()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Internal("marshal request body", errors.WithCause(err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Internal("build request", errors.WithCause(err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return nil, errors.Timeout(fmt.Sprintf("%s %s exceeded %s", method, path, c.cfg.RequestTimeout))
		}
		return nil, errors.Internal(fmt.Sprintf("%s %s failed", method, path), errors.WithCause(err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Internal("read response body", errors.WithCause(err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Upstream(resp.StatusCode, truncate(string(data), 512))
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
