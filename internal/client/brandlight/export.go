package brandlight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
)

// FetchExport retrieves a logically single export dataset, splitting the
// requested amount into pages of cfg.PageSize and running them in sequential
// batches of at most cfg.BatchSize concurrent calls. Output item order
// always equals the order a single unpaginated fetch would have returned;
// page results are tagged with their index and reassembled by it, never by
// completion order. Any page failure fails the whole fetch. No retries.
func (c *Client) FetchExport(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error) {
	if req.Amount < 0 {
		return nil, errors.Validation("export amount must not be negative")
	}
	if req.Start < 0 {
		return nil, errors.Validation("export start must not be negative")
	}
	if req.Amount == 0 {
		return &model.ExportResult{Items: []json.RawMessage{}}, nil
	}

	descriptors := paginate(req, c.cfg.PageSize)
	pages := make([]model.ExportPage, len(descriptors))

	slog.DebugContext(ctx, "brandlight.export.fetch_start",
		slog.String("tenant_id", req.TenantID),
		slog.String("brand_id", req.BrandID),
		slog.Int("amount", req.Amount),
		slog.Int("page_count", len(descriptors)),
		slog.Int("batch_size", c.cfg.BatchSize),
	)

	for batchStart := 0; batchStart < len(descriptors); batchStart += c.cfg.BatchSize {
		batchEnd := batchStart + c.cfg.BatchSize
		if batchEnd > len(descriptors) {
			batchEnd = len(descriptors)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := batchStart; i < batchEnd; i++ {
			g.Go(func() error {
				items, err := c.fetchPage(gctx, descriptors[i])
				if err != nil {
					return fmt.Errorf("export page %d: %w", i, err)
				}
				pages[i] = model.ExportPage{PageIndex: i, Items: items}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].PageIndex < pages[j].PageIndex })

	result := &model.ExportResult{PageCount: len(pages)}
	for _, page := range pages {
		result.Items = append(result.Items, page.Items...)
		result.TotalFetched += len(page.Items)
	}

	slog.DebugContext(ctx, "brandlight.export.fetch_done",
		slog.String("tenant_id", req.TenantID),
		slog.Int("total_fetched", result.TotalFetched),
	)
	return result, nil
}

// paginate splits a request into page descriptors. Descriptor i asks for
// start = req.Start + i*pageSize and at most pageSize items; all filter
// fields are carried unchanged. The per-page amounts always sum to
// req.Amount with no gaps or overlaps at page boundaries.
func paginate(req model.ExportRequest, pageSize int) []model.ExportRequest {
	pageCount := (req.Amount + pageSize - 1) / pageSize
	descriptors := make([]model.ExportRequest, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		page := req
		page.Start = req.Start + i*pageSize
		page.Amount = pageSize
		if remaining := req.Amount - i*pageSize; remaining < pageSize {
			page.Amount = remaining
		}
		descriptors = append(descriptors, page)
	}
	return descriptors
}

func (c *Client) fetchPage(ctx context.Context, req model.ExportRequest) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/api/v1/tenant/%s/queries/%s/export",
		url.PathEscape(req.TenantID), url.PathEscape(req.BrandID))

	data, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	return decodeExportItems(data)
}

// decodeExportItems normalizes the two shapes the export endpoint is known
// to answer with: {"data": [...]} or the bare array. Downstream code only
// ever sees the canonical slice.
func decodeExportItems(data []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Internal("unexpected export response shape", errors.WithCause(err))
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
