package brandlight

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
)

// UpdateDownloadStatus reports a job status transition to the partner API.
func (c *Client) UpdateDownloadStatus(ctx context.Context, tenantID, downloadID string, upd model.DownloadStatusUpdate) error {
	path := fmt.Sprintf("/api/v1/tenant/%s/download/%s",
		url.PathEscape(tenantID), url.PathEscape(downloadID))
	_, err := c.do(ctx, http.MethodPut, path, upd)
	return err
}

// HealthCheck probes Brandlight API connectivity. Unlike the data calls it
// needs no bearer token, so it bypasses the token holder.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/v1/health", nil)
	if err != nil {
		return errors.Internal("build health request", errors.WithCause(err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return errors.Timeout("health check exceeded " + c.cfg.RequestTimeout.String())
		}
		return errors.Internal("health check failed", errors.WithCause(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Upstream(resp.StatusCode, truncate(string(body), 512))
	}
	return nil
}
