package report

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
	"github.com/avichaydahan/brandlight-reports/internal/pdf"
	"github.com/avichaydahan/brandlight-reports/internal/storage"
)

type fakeFetcher struct {
	result  *model.ExportResult
	err     error
	calls   int
	lastReq model.ExportRequest
}

func (f *fakeFetcher) FetchExport(_ context.Context, req model.ExportRequest) (*model.ExportResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type statusCall struct {
	tenantID   string
	downloadID string
	upd        model.DownloadStatusUpdate
}

type fakeReporter struct {
	calls []statusCall
	err   error
}

func (f *fakeReporter) UpdateDownloadStatus(_ context.Context, tenantID, downloadID string, upd model.DownloadStatusUpdate) error {
	f.calls = append(f.calls, statusCall{tenantID: tenantID, downloadID: downloadID, upd: upd})
	return f.err
}

func (f *fakeReporter) statuses() []model.JobStatus {
	out := make([]model.JobStatus, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.upd.Status)
	}
	return out
}

type fakeUploader struct {
	objects []storage.UploadObject
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, obj storage.UploadObject) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.objects = append(f.objects, obj)
	return storage.ObjectKey(obj.TenantID, obj.FileName), nil
}

type fakeCompositor struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeCompositor) Compose(_ context.Context, _ pdf.Document) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

type fakeCache struct {
	statuses map[string]model.JobStatus
	getErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: map[string]model.JobStatus{}}
}

func (f *fakeCache) SetJobStatus(_ context.Context, downloadID string, status model.JobStatus) error {
	f.statuses[downloadID] = status
	return nil
}

func (f *fakeCache) GetJobStatus(_ context.Context, downloadID string) (model.JobStatus, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	status, ok := f.statuses[downloadID]
	return status, ok, nil
}

func (f *fakeCache) ClearJob(_ context.Context, downloadID string) error {
	delete(f.statuses, downloadID)
	return nil
}

func items(n int) []json.RawMessage {
	out := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, json.RawMessage(`{}`))
	}
	return out
}

func testJob(rt model.ReportType) model.DownloadJob {
	return model.DownloadJob{
		TenantID:   "tenant-1",
		BrandID:    "brand-1",
		DownloadID: "dl-42",
		ReportType: rt,
	}
}

func newTestOrchestrator(t *testing.T, fetcher ExportFetcher, reporter StatusReporter, compositor Compositor, uploader storage.Uploader, c *fakeCache) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(fetcher, reporter, compositor, uploader, nil, c)
	require.NoError(t, err)
	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return o
}

func TestGenerateJSONExport(t *testing.T) {
	fetcher := &fakeFetcher{result: &model.ExportResult{Items: items(3), TotalFetched: 3, PageCount: 1}}
	reporter := &fakeReporter{}
	uploader := &fakeUploader{}
	compositor := &fakeCompositor{}

	o := newTestOrchestrator(t, fetcher, reporter, compositor, uploader, newFakeCache())

	params := model.ExportRequest{TenantID: "tenant-1", BrandID: "brand-1", Amount: 3}
	artifact, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport), params, model.ReportMetadata{})
	require.NoError(t, err)

	require.Len(t, uploader.objects, 1, "a JSON export uploads exactly one object")
	obj := uploader.objects[0]
	assert.Equal(t, "application/json", obj.ContentType)
	assert.Equal(t, "tenant-1", obj.TenantID)
	assert.True(t, strings.HasPrefix(obj.FileName, "json-export-dl-42-"))
	assert.True(t, strings.HasSuffix(obj.FileName, ".json"))

	assert.Equal(t, 0, compositor.calls, "JSON exports never touch the compositor")

	assert.Equal(t, "tenant-1/QUERIES/"+obj.FileName, artifact.Path)
	assert.Equal(t, len(obj.Body), artifact.Size)

	var envelope struct {
		ItemCount int               `json:"itemCount"`
		Items     []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(obj.Body, &envelope))
	assert.Equal(t, 3, envelope.ItemCount)
	assert.Len(t, envelope.Items, 3)

	assert.Equal(t, []model.JobStatus{model.JobStatusInProgress, model.JobStatusReady}, reporter.statuses())
	assert.Equal(t, artifact.Path, reporter.calls[1].upd.FilePath)
}

func TestGeneratePDFReport(t *testing.T) {
	fetcher := &fakeFetcher{result: &model.ExportResult{Items: items(10), TotalFetched: 10, PageCount: 1}}
	reporter := &fakeReporter{}
	uploader := &fakeUploader{}
	compositor := &fakeCompositor{out: []byte("%PDF-1.7 fake")}

	o := newTestOrchestrator(t, fetcher, reporter, compositor, uploader, newFakeCache())

	params := model.ExportRequest{TenantID: "tenant-1", BrandID: "brand-1", Amount: 500}
	artifact, err := o.Generate(context.Background(), testJob(model.ReportTypePartnership), params, model.ReportMetadata{BrandName: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, 1, compositor.calls)
	assert.LessOrEqual(t, fetcher.lastReq.Amount, 100, "the context fetch is capped")

	require.Len(t, uploader.objects, 1)
	assert.Equal(t, "application/pdf", uploader.objects[0].ContentType)
	assert.True(t, strings.HasSuffix(artifact.FileName, ".pdf"))
	assert.True(t, strings.HasPrefix(artifact.FileName, "partnership-dl-42-"))
}

func TestGenerateReportsInProgressBeforeFetch(t *testing.T) {
	reporter := &fakeReporter{}
	fetchErr := errors.Upstream(http.StatusBadGateway, "boom")
	fetcher := &fakeFetcher{err: fetchErr}
	uploader := &fakeUploader{}

	o := newTestOrchestrator(t, fetcher, reporter, &fakeCompositor{}, uploader, newFakeCache())

	_, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport),
		model.ExportRequest{Amount: 10}, model.ReportMetadata{})
	require.Error(t, err)

	// IN_PROGRESS must have gone out even though the fetch failed.
	require.GreaterOrEqual(t, len(reporter.calls), 2)
	assert.Equal(t, model.JobStatusInProgress, reporter.calls[0].upd.Status)
	assert.Equal(t, model.JobStatusError, reporter.calls[1].upd.Status)
	assert.Contains(t, reporter.calls[1].upd.Error, "502")
	assert.Empty(t, uploader.objects, "nothing is uploaded on failure")
}

func TestGenerateFailureReturnsPrimaryErrorEvenWhenReportingFails(t *testing.T) {
	fetchErr := errors.Timeout("page fetch exceeded 30s")
	fetcher := &fakeFetcher{err: fetchErr}
	reporter := &fakeReporter{err: errors.Internal("status endpoint down")}

	o := newTestOrchestrator(t, fetcher, reporter, &fakeCompositor{}, &fakeUploader{}, newFakeCache())

	_, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport),
		model.ExportRequest{Amount: 10}, model.ReportMetadata{})

	require.Error(t, err)
	assert.Equal(t, http.StatusRequestTimeout, errors.StatusCode(err),
		"the fetch error is returned, never the reporting error")
}

func TestGenerateDuplicateRejected(t *testing.T) {
	c := newFakeCache()
	c.statuses["dl-42"] = model.JobStatusInProgress

	fetcher := &fakeFetcher{result: &model.ExportResult{}}
	o := newTestOrchestrator(t, fetcher, &fakeReporter{}, &fakeCompositor{}, &fakeUploader{}, c)

	_, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport),
		model.ExportRequest{Amount: 10}, model.ReportMetadata{})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, errors.StatusCode(err))
	assert.Equal(t, 0, fetcher.calls, "a duplicate job never fetches")
}

func TestGenerateClearsCacheOnCompletion(t *testing.T) {
	c := newFakeCache()
	fetcher := &fakeFetcher{result: &model.ExportResult{Items: items(1), TotalFetched: 1}}

	o := newTestOrchestrator(t, fetcher, &fakeReporter{}, &fakeCompositor{}, &fakeUploader{}, c)

	_, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport),
		model.ExportRequest{Amount: 1}, model.ReportMetadata{})
	require.NoError(t, err)

	_, found, err := c.GetJobStatus(context.Background(), "dl-42")
	require.NoError(t, err)
	assert.False(t, found, "finished jobs leave no cache entry behind")
}

func TestGenerateUploadFailure(t *testing.T) {
	fetcher := &fakeFetcher{result: &model.ExportResult{Items: items(1), TotalFetched: 1}}
	reporter := &fakeReporter{}
	uploader := &fakeUploader{err: errors.Storage("bucket write failed")}

	o := newTestOrchestrator(t, fetcher, reporter, &fakeCompositor{}, uploader, newFakeCache())

	_, err := o.Generate(context.Background(), testJob(model.ReportTypeJSONExport),
		model.ExportRequest{Amount: 1}, model.ReportMetadata{})

	require.Error(t, err)
	assert.Equal(t, "storage.upload.failed", errors.ErrorID(err))
	last := reporter.calls[len(reporter.calls)-1]
	assert.Equal(t, model.JobStatusError, last.upd.Status)
}

func TestGenerateUnknownReportType(t *testing.T) {
	o := newTestOrchestrator(t, &fakeFetcher{}, &fakeReporter{}, &fakeCompositor{}, &fakeUploader{}, newFakeCache())

	_, err := o.Generate(context.Background(), testJob(model.ReportType("csv")),
		model.ExportRequest{}, model.ReportMetadata{})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
}

func TestNewOrchestratorNilDependency(t *testing.T) {
	_, err := NewOrchestrator(nil, &fakeReporter{}, nil, &fakeUploader{}, nil, nil)
	assert.Error(t, err)

	_, err = NewOrchestrator(&fakeFetcher{}, nil, nil, &fakeUploader{}, nil, nil)
	assert.Error(t, err)
}

func TestMetaTitleDefaults(t *testing.T) {
	assert.Equal(t, "Custom", metaTitle(model.ReportMetadata{Title: "Custom"}, testJob(model.ReportTypePartnership)))
	assert.Equal(t, "Partnership Intelligence Report", metaTitle(model.ReportMetadata{}, testJob(model.ReportTypePartnership)))
	assert.Equal(t, "Domain Influence Report", metaTitle(model.ReportMetadata{}, testJob(model.ReportTypeSingleDomain)))
	assert.Equal(t, "Query Export", metaTitle(model.ReportMetadata{}, testJob(model.ReportTypeJSONExport)))
}
