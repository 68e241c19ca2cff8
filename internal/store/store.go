package store

import (
	"context"

	"github.com/avichaydahan/brandlight-reports/internal/model"
)

type Store interface {
	Download() DownloadStore

	// ------------ Database Management ------------ //
	Open() error  // Return custom DB error
	Close() error // Return custom DB error
}

// DownloadStore persists the history of report-generation requests.
type DownloadStore interface {
	InsertDownloadHistory(ctx context.Context, input *model.NewDownloadHistory) (int64, error)
	UpdateDownloadHistory(ctx context.Context, input *model.UpdateDownloadHistory) error
	ListDownloadHistory(ctx context.Context, tenantID string, limit, offset int64) ([]*model.DownloadHistory, error)
}
