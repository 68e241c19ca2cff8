package storage

import (
	"context"
	"fmt"
)

// UploadObject is one artifact to persist.
type UploadObject struct {
	TenantID    string
	FileName    string
	ContentType string
	Body        []byte
}

// Uploader persists report artifacts. Upload returns the object path the
// artifact is reachable under.
type Uploader interface {
	Upload(ctx context.Context, obj UploadObject) (string, error)
}

// ObjectKey builds the bucket key for a tenant's artifact.
func ObjectKey(tenantID, fileName string) string {
	return fmt.Sprintf("%s/QUERIES/%s", tenantID, fileName)
}
