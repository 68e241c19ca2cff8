// Package handler implements the HTTP endpoints. Orchestrator and API
// client instances are built per request so each one carries exactly the
// bearer token of the request it serves.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/avichaydahan/brandlight-reports/auth"
	"github.com/avichaydahan/brandlight-reports/internal/cache"
	"github.com/avichaydahan/brandlight-reports/internal/client/brandlight"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
	"github.com/avichaydahan/brandlight-reports/internal/report"
	"github.com/avichaydahan/brandlight-reports/internal/storage"
	"github.com/avichaydahan/brandlight-reports/internal/store"
)

// Generator runs one download job end to end.
type Generator interface {
	Generate(ctx context.Context, job model.DownloadJob, params model.ExportRequest, meta model.ReportMetadata) (*model.Artifact, error)
}

// HealthChecker probes partner API connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Deps struct {
	Brandlight brandlight.Config
	Compositor report.Compositor
	Uploader   storage.Uploader
	Store      store.Store
	Cache      cache.Cache

	// NewGenerator and NewHealth override instance construction in tests.
	NewGenerator func(holder *auth.TokenHolder) (Generator, error)
	NewHealth    func() HealthChecker
}

type ReportHandler struct {
	deps Deps
}

func NewReportHandler(deps Deps) (*ReportHandler, error) {
	if deps.NewGenerator == nil && deps.Uploader == nil {
		return nil, errors.Internal("report handler: uploader is nil")
	}
	return &ReportHandler{deps: deps}, nil
}

func (h *ReportHandler) generator(holder *auth.TokenHolder) (Generator, error) {
	if h.deps.NewGenerator != nil {
		return h.deps.NewGenerator(holder)
	}
	client := brandlight.New(h.deps.Brandlight, holder)
	return report.NewOrchestrator(client, client, h.deps.Compositor, h.deps.Uploader, h.deps.Store, h.deps.Cache)
}

func (h *ReportHandler) health() HealthChecker {
	if h.deps.NewHealth != nil {
		return h.deps.NewHealth()
	}
	return brandlight.New(h.deps.Brandlight, auth.NewTokenHolder())
}

type generateReportRequest struct {
	TenantID     string                `json:"tenantId"`
	BrandID      string                `json:"brandId"`
	DownloadID   string                `json:"downloadId"`
	ReportType   string                `json:"reportType"`
	ExportParams *model.ExportRequest  `json:"exportParams,omitempty"`
	Metadata     *model.ReportMetadata `json:"metadata,omitempty"`
}

type generateReportResponse struct {
	Success     bool   `json:"success"`
	DownloadID  string `json:"downloadId"`
	ReportType  string `json:"reportType"`
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	Status      string `json:"status"`
}

func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, errors.Validation("request body is not valid JSON", errors.WithCause(err)))
		return
	}

	job, params, err := validateGenerateRequest(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	meta := model.ReportMetadata{}
	if req.Metadata != nil {
		meta = *req.Metadata
	}

	holder := auth.FromContext(ctx)
	slog.InfoContext(ctx, "brandlight_reports.api.generate_report",
		slog.String("tenant_id", job.TenantID),
		slog.String("download_id", job.DownloadID),
		slog.String("report_type", string(job.ReportType)),
		slog.String("token", holder.Preview()),
	)

	gen, err := h.generator(holder)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	artifact, err := gen.Generate(ctx, job, params, meta)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, generateReportResponse{
		Success:     true,
		DownloadID:  job.DownloadID,
		ReportType:  string(job.ReportType),
		DownloadURL: artifact.Path,
		FileName:    artifact.FileName,
		Status:      string(model.JobStatusReady),
	})
}

func validateGenerateRequest(req generateReportRequest) (model.DownloadJob, model.ExportRequest, error) {
	var job model.DownloadJob
	var params model.ExportRequest

	var missing []string
	if req.TenantID == "" {
		missing = append(missing, "tenantId")
	}
	if req.BrandID == "" {
		missing = append(missing, "brandId")
	}
	if req.DownloadID == "" {
		missing = append(missing, "downloadId")
	}
	if len(missing) > 0 {
		return job, params, errors.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	if req.ReportType == "" {
		return job, params, errors.Validation(
			fmt.Sprintf("reportType is required; valid values: %s", strings.Join(model.ReportTypeValues(), ", ")),
			errors.WithID("api.generate_report.report_type_missing"),
		)
	}
	reportType, err := model.ParseReportType(req.ReportType)
	if err != nil {
		return job, params, errors.Validation(err.Error(), errors.WithID("api.generate_report.report_type_invalid"))
	}

	if req.ExportParams != nil {
		params = *req.ExportParams
	}
	params.TenantID = req.TenantID
	params.BrandID = req.BrandID
	if params.Amount < 0 || params.Start < 0 {
		return job, params, errors.Validation("exportParams.start and exportParams.amount must not be negative")
	}

	job = model.DownloadJob{
		TenantID:   req.TenantID,
		BrandID:    req.BrandID,
		DownloadID: req.DownloadID,
		ReportType: reportType,
		Status:     model.JobStatusPending,
	}
	return job, params, nil
}

func (h *ReportHandler) BrandlightHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.health().HealthCheck(ctx); err != nil {
		slog.WarnContext(ctx, "brandlight_reports.api.health_check_failed", slog.String("error", err.Error()))
		writeJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"details": errors.Details(err),
		})
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// DownloadHistory lists past report-generation requests for a tenant.
func (h *ReportHandler) DownloadHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.deps.Store == nil {
		writeError(ctx, w, errors.Internal("history store is not configured"))
		return
	}

	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		writeError(ctx, w, errors.Validation("tenantId query parameter is required"))
		return
	}
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	records, err := h.deps.Store.Download().ListDownloadHistory(ctx, tenantID, limit, offset)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"items": records})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "brandlight_reports.api.write_response_failed", slog.String("error", err.Error()))
	}
}

// writeError maps an app error to {error, details}. No stack traces leave
// the process.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	slog.WarnContext(ctx, "brandlight_reports.api.request_failed",
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	writeJSON(ctx, w, status, map[string]string{
		"error":   errors.ErrorID(err),
		"details": errors.Details(err),
	})
}
