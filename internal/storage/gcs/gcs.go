package gcs

import (
	"context"
	"log/slog"

	gstorage "cloud.google.com/go/storage"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/storage"
)

// Uploader writes report artifacts to a GCS bucket under
// {tenantId}/QUERIES/{fileName}.
type Uploader struct {
	client *gstorage.Client
	bucket string
}

func New(ctx context.Context, bucket string) (*Uploader, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, errors.Storage("create gcs client", errors.WithCause(err))
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Upload(ctx context.Context, obj storage.UploadObject) (string, error) {
	key := storage.ObjectKey(obj.TenantID, obj.FileName)

	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := w.Write(obj.Body); err != nil {
		_ = w.Close()
		return "", errors.Storage("write artifact", errors.WithCause(err))
	}
	if err := w.Close(); err != nil {
		return "", errors.Storage("finalize artifact", errors.WithCause(err))
	}

	slog.InfoContext(ctx, "brandlight_reports.storage.uploaded",
		slog.String("bucket", u.bucket),
		slog.String("key", key),
		slog.Int("size", len(obj.Body)),
	)
	return key, nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}
