package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avichaydahan/brandlight-reports/auth"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
)

type fakeGenerator struct {
	artifact *model.Artifact
	err      error
	job      model.DownloadJob
	params   model.ExportRequest
	holder   *auth.TokenHolder
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, job model.DownloadJob, params model.ExportRequest, _ model.ReportMetadata) (*model.Artifact, error) {
	f.calls++
	f.job = job
	f.params = params
	return f.artifact, f.err
}

type fakeHealth struct{ err error }

func (f *fakeHealth) HealthCheck(context.Context) error { return f.err }

func newTestHandler(t *testing.T, gen *fakeGenerator, health *fakeHealth) *ReportHandler {
	t.Helper()
	h, err := NewReportHandler(Deps{
		NewGenerator: func(holder *auth.TokenHolder) (Generator, error) {
			gen.holder = holder
			return gen, nil
		},
		NewHealth: func() HealthChecker { return health },
	})
	require.NoError(t, err)
	return h
}

func doGenerate(h *ReportHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generateReport", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret-token-value")
	rec := httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(h.GenerateReport)).ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerateReportSuccess(t *testing.T) {
	gen := &fakeGenerator{artifact: &model.Artifact{
		FileName: "json-export-dl-1-2026-03-14T09-26-53Z.json",
		Path:     "tenant-1/QUERIES/json-export-dl-1-2026-03-14T09-26-53Z.json",
	}}
	h := newTestHandler(t, gen, &fakeHealth{})

	rec := doGenerate(h, `{
		"tenantId": "tenant-1",
		"brandId": "brand-1",
		"downloadId": "dl-1",
		"reportType": "json-export",
		"exportParams": {"amount": 250}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dl-1", body["downloadId"])
	assert.Equal(t, "json-export", body["reportType"])
	assert.Equal(t, gen.artifact.Path, body["downloadUrl"])
	assert.Equal(t, gen.artifact.FileName, body["fileName"])
	assert.Equal(t, "READY_FOR_DOWNLOAD", body["status"])

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "tenant-1", gen.params.TenantID, "export params inherit the top-level tenant")
	assert.Equal(t, 250, gen.params.Amount)

	token, err := gen.holder.Token()
	require.NoError(t, err)
	assert.Equal(t, "secret-token-value", token, "the generator gets the request's bearer token")
}

func TestGenerateReportMissingReportType(t *testing.T) {
	gen := &fakeGenerator{}
	h := newTestHandler(t, gen, &fakeHealth{})

	rec := doGenerate(h, `{"tenantId": "t1", "brandId": "b1", "downloadId": "d1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "api.generate_report.report_type_missing", body["error"])
	for _, v := range model.ReportTypeValues() {
		assert.Contains(t, body["details"], v, "the error must enumerate valid report types")
	}
	assert.Equal(t, 0, gen.calls)
}

func TestGenerateReportInvalidReportType(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{})

	rec := doGenerate(h, `{"tenantId": "t1", "brandId": "b1", "downloadId": "d1", "reportType": "csv"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "api.generate_report.report_type_invalid", body["error"])
	assert.Contains(t, body["details"], "csv")
}

func TestGenerateReportMissingIdentifiers(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{})

	rec := doGenerate(h, `{"reportType": "json-export"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["details"], "tenantId")
	assert.Contains(t, body["details"], "brandId")
	assert.Contains(t, body["details"], "downloadId")
}

func TestGenerateReportMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{})
	rec := doGenerate(h, `{"tenantId": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateReportNegativeParams(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{})

	rec := doGenerate(h, `{
		"tenantId": "t1", "brandId": "b1", "downloadId": "d1",
		"reportType": "json-export",
		"exportParams": {"amount": -3}
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateReportGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.Upstream(http.StatusBadGateway, "brandlight down")}
	h := newTestHandler(t, gen, &fakeHealth{})

	rec := doGenerate(h, `{"tenantId": "t1", "brandId": "b1", "downloadId": "d1", "reportType": "partnership"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code, "upstream status codes pass through")
	body := decodeBody(t, rec)
	assert.Equal(t, "brandlight.api.upstream", body["error"])
}

func TestBrandlightHealthCheck(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{})

	rec := httptest.NewRecorder()
	h.BrandlightHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/brandlightHealthCheck", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestBrandlightHealthCheckUnavailable(t *testing.T) {
	h := newTestHandler(t, &fakeGenerator{}, &fakeHealth{err: errors.Upstream(http.StatusInternalServerError, "down")})

	rec := httptest.NewRecorder()
	h.BrandlightHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/brandlightHealthCheck", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeBody(t, rec)["status"])
}
