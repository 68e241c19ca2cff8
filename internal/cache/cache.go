package cache

import (
	"context"

	"github.com/avichaydahan/brandlight-reports/internal/model"
)

// Cache mirrors in-flight job status so duplicate generateReport calls for
// the same downloadId can be rejected without touching Postgres.
type Cache interface {
	SetJobStatus(ctx context.Context, downloadID string, status model.JobStatus) error
	GetJobStatus(ctx context.Context, downloadID string) (model.JobStatus, bool, error)
	ClearJob(ctx context.Context, downloadID string) error
}
