// Package report routes a download job to the right data-acquisition and
// rendering path, keeps its status moving, and hands the artifact to storage.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avichaydahan/brandlight-reports/internal/cache"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
	"github.com/avichaydahan/brandlight-reports/internal/pdf"
	"github.com/avichaydahan/brandlight-reports/internal/storage"
	"github.com/avichaydahan/brandlight-reports/internal/store"
)

// ExportFetcher is the paginated Brandlight export client.
type ExportFetcher interface {
	FetchExport(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error)
}

// StatusReporter pushes job status transitions to the partner API.
type StatusReporter interface {
	UpdateDownloadStatus(ctx context.Context, tenantID, downloadID string, upd model.DownloadStatusUpdate) error
}

// Compositor prints a report document to merged PDF bytes.
type Compositor interface {
	Compose(ctx context.Context, doc pdf.Document) ([]byte, error)
}

// Orchestrator serves exactly one incoming request; construct a fresh one
// per request so the fetcher sees that request's bearer token. The
// compositor, uploader, store and cache handles it borrows are shared.
type Orchestrator struct {
	fetcher    ExportFetcher
	reporter   StatusReporter
	compositor Compositor
	uploader   storage.Uploader
	store      store.Store
	cache      cache.Cache
	now        func() time.Time
}

func NewOrchestrator(
	fetcher ExportFetcher,
	reporter StatusReporter,
	compositor Compositor,
	uploader storage.Uploader,
	st store.Store,
	c cache.Cache,
) (*Orchestrator, error) {
	if fetcher == nil || reporter == nil || uploader == nil {
		return nil, errors.Internal("orchestrator dependency is nil")
	}
	return &Orchestrator{
		fetcher:    fetcher,
		reporter:   reporter,
		compositor: compositor,
		uploader:   uploader,
		store:      st,
		cache:      c,
		now:        time.Now,
	}, nil
}

// jsonExportEnvelope wraps the raw export items with generation metadata.
type jsonExportEnvelope struct {
	Title       string            `json:"title"`
	TenantID    string            `json:"tenantId"`
	BrandID     string            `json:"brandId"`
	GeneratedAt string            `json:"generatedAt"`
	ItemCount   int               `json:"itemCount"`
	DateRange   *model.DateRange  `json:"dateRange,omitempty"`
	Items       []json.RawMessage `json:"items"`
}

// Generate runs one download job to completion. The job is reported
// IN_PROGRESS before any data fetch so an external poller can observe that
// work has started; on failure an ERROR report is attempted best-effort and
// the primary error is always the one returned.
func (o *Orchestrator) Generate(ctx context.Context, job model.DownloadJob, params model.ExportRequest, meta model.ReportMetadata) (*model.Artifact, error) {
	if err := o.guardDuplicate(ctx, job); err != nil {
		return nil, err
	}

	historyID := o.insertHistory(ctx, job)
	o.setStatus(ctx, job, model.JobStatusInProgress, nil)

	artifact, err := o.generate(ctx, job, params, meta)
	if err != nil {
		o.failJob(ctx, job, historyID, err)
		return nil, err
	}

	o.finishJob(ctx, job, historyID, artifact)
	return artifact, nil
}

func (o *Orchestrator) generate(ctx context.Context, job model.DownloadJob, params model.ExportRequest, meta model.ReportMetadata) (*model.Artifact, error) {
	switch job.ReportType {
	case model.ReportTypeJSONExport:
		return o.generateJSONExport(ctx, job, params, meta)
	case model.ReportTypePartnership, model.ReportTypeSingleDomain:
		return o.generatePDFReport(ctx, job, params, meta)
	default:
		return nil, errors.Validation(fmt.Sprintf("unknown report type: %s", job.ReportType))
	}
}

func (o *Orchestrator) generateJSONExport(ctx context.Context, job model.DownloadJob, params model.ExportRequest, meta model.ReportMetadata) (*model.Artifact, error) {
	result, err := o.fetcher.FetchExport(ctx, params)
	if err != nil {
		return nil, err
	}

	envelope := jsonExportEnvelope{
		Title:       metaTitle(meta, job),
		TenantID:    job.TenantID,
		BrandID:     job.BrandID,
		GeneratedAt: o.now().UTC().Format(time.RFC3339),
		ItemCount:   result.TotalFetched,
		DateRange:   params.DateRange,
		Items:       result.Items,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, errors.Internal("marshal export envelope", errors.WithCause(err))
	}

	return o.upload(ctx, job, body, "application/json", ".json")
}

func (o *Orchestrator) generatePDFReport(ctx context.Context, job model.DownloadJob, params model.ExportRequest, meta model.ReportMetadata) (*model.Artifact, error) {
	if o.compositor == nil {
		return nil, errors.Internal("pdf compositor is not configured")
	}

	// Context fetch: a single bounded pull whose size only informs the
	// report summary. Kept non-paginated by capping the amount.
	itemCount := 0
	if params.Amount > 0 {
		contextParams := params
		if contextParams.Amount > 100 {
			contextParams.Amount = 100
		}
		result, err := o.fetcher.FetchExport(ctx, contextParams)
		if err != nil {
			return nil, err
		}
		itemCount = result.TotalFetched
		slog.InfoContext(ctx, "brandlight_reports.report.context_fetched",
			slog.String("download_id", job.DownloadID),
			slog.Int("item_count", itemCount),
		)
	}

	doc, err := o.buildDocument(ctx, job, meta, itemCount)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := o.compositor.Compose(ctx, doc)
	if err != nil {
		return nil, err
	}

	return o.upload(ctx, job, pdfBytes, "application/pdf", ".pdf")
}

func (o *Orchestrator) upload(ctx context.Context, job model.DownloadJob, body []byte, contentType, ext string) (*model.Artifact, error) {
	fileName := model.ArtifactFileName(job, o.now(), ext)
	path, err := o.uploader.Upload(ctx, storage.UploadObject{
		TenantID:    job.TenantID,
		FileName:    fileName,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		return nil, err
	}
	return &model.Artifact{
		FileName:    fileName,
		Path:        path,
		ContentType: contentType,
		Size:        len(body),
	}, nil
}

// guardDuplicate rejects a downloadId that is already being processed.
func (o *Orchestrator) guardDuplicate(ctx context.Context, job model.DownloadJob) error {
	if o.cache == nil {
		return nil
	}
	status, found, err := o.cache.GetJobStatus(ctx, job.DownloadID)
	if err != nil {
		return errors.Internal("check job status", errors.WithCause(err))
	}
	if found && (status == model.JobStatusPending || status == model.JobStatusInProgress) {
		return errors.New(
			fmt.Sprintf("download %s is already in progress", job.DownloadID),
			errors.WithID("report.generate.duplicate"),
			errors.WithStatus(http.StatusConflict),
		)
	}
	return nil
}

// insertHistory records the job in Postgres. History is an audit trail, not
// the system of record, so a failure here only logs.
func (o *Orchestrator) insertHistory(ctx context.Context, job model.DownloadJob) int64 {
	if o.store == nil {
		return 0
	}
	id, err := o.store.Download().InsertDownloadHistory(ctx, &model.NewDownloadHistory{
		TenantID:   job.TenantID,
		BrandID:    job.BrandID,
		DownloadID: job.DownloadID,
		ReportType: job.ReportType,
		Status:     model.JobStatusInProgress,
		CreatedAt:  o.now().UnixMilli(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "brandlight_reports.report.history_insert_failed",
			slog.String("download_id", job.DownloadID), slog.String("error", err.Error()))
		return 0
	}
	return id
}

// setStatus mirrors status to the cache and reports it to the partner API.
// Both are best-effort; their failure never fails the job itself.
func (o *Orchestrator) setStatus(ctx context.Context, job model.DownloadJob, status model.JobStatus, upd *model.DownloadStatusUpdate) {
	if o.cache != nil {
		if err := o.cache.SetJobStatus(ctx, job.DownloadID, status); err != nil {
			slog.WarnContext(ctx, "brandlight_reports.report.cache_status_failed",
				slog.String("download_id", job.DownloadID), slog.String("error", err.Error()))
		}
	}
	if upd == nil {
		upd = &model.DownloadStatusUpdate{Status: status}
	}
	if err := o.reporter.UpdateDownloadStatus(ctx, job.TenantID, job.DownloadID, *upd); err != nil {
		slog.WarnContext(ctx, "brandlight_reports.report.status_report_failed",
			slog.String("download_id", job.DownloadID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) failJob(ctx context.Context, job model.DownloadJob, historyID int64, cause error) {
	msg := errors.Details(cause)
	o.setStatus(ctx, job, model.JobStatusError, &model.DownloadStatusUpdate{
		Status: model.JobStatusError,
		Error:  msg,
	})
	o.updateHistory(ctx, job, historyID, model.JobStatusError, nil, &msg)
	o.clearCache(ctx, job)
}

func (o *Orchestrator) finishJob(ctx context.Context, job model.DownloadJob, historyID int64, artifact *model.Artifact) {
	o.setStatus(ctx, job, model.JobStatusReady, &model.DownloadStatusUpdate{
		Status:   model.JobStatusReady,
		FilePath: artifact.Path,
	})
	o.updateHistory(ctx, job, historyID, model.JobStatusReady, artifact, nil)
	o.clearCache(ctx, job)
}

func (o *Orchestrator) updateHistory(ctx context.Context, job model.DownloadJob, historyID int64, status model.JobStatus, artifact *model.Artifact, errMsg *string) {
	if o.store == nil || historyID == 0 {
		return
	}
	upd := &model.UpdateDownloadHistory{
		ID:        historyID,
		Status:    status,
		Error:     errMsg,
		UpdatedAt: o.now().UnixMilli(),
	}
	if artifact != nil {
		upd.FileName = artifact.FileName
		upd.FilePath = artifact.Path
	}
	if err := o.store.Download().UpdateDownloadHistory(ctx, upd); err != nil {
		slog.ErrorContext(ctx, "brandlight_reports.report.history_update_failed",
			slog.String("download_id", job.DownloadID), slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) clearCache(ctx context.Context, job model.DownloadJob) {
	if o.cache == nil {
		return
	}
	if err := o.cache.ClearJob(ctx, job.DownloadID); err != nil {
		slog.WarnContext(ctx, "brandlight_reports.report.cache_clear_failed",
			slog.String("download_id", job.DownloadID), slog.String("error", err.Error()))
	}
}

func metaTitle(meta model.ReportMetadata, job model.DownloadJob) string {
	if meta.Title != "" {
		return meta.Title
	}
	switch job.ReportType {
	case model.ReportTypePartnership:
		return "Partnership Intelligence Report"
	case model.ReportTypeSingleDomain:
		return "Domain Influence Report"
	default:
		return "Query Export"
	}
}
