package model

// DownloadHistory is a persisted record of one report-generation request.
type DownloadHistory struct {
	ID         int64      `db:"id"`
	TenantID   string     `db:"tenant_id"`
	BrandID    string     `db:"brand_id"`
	DownloadID string     `db:"download_id"`
	ReportType ReportType `db:"report_type"`
	FileName   string     `db:"file_name"`
	FilePath   string     `db:"file_path"`
	Status     JobStatus  `db:"status"`
	Error      *string    `db:"error"`
	CreatedAt  int64      `db:"created_at"`
	UpdatedAt  int64      `db:"updated_at"`
}

type NewDownloadHistory struct {
	TenantID   string     `db:"tenant_id"`
	BrandID    string     `db:"brand_id"`
	DownloadID string     `db:"download_id"`
	ReportType ReportType `db:"report_type"`
	Status     JobStatus  `db:"status"`
	CreatedAt  int64      `db:"created_at"`
}

type UpdateDownloadHistory struct {
	ID        int64     `db:"id"`
	Status    JobStatus `db:"status"`
	FileName  string    `db:"file_name"`
	FilePath  string    `db:"file_path"`
	Error     *string   `db:"error"`
	UpdatedAt int64     `db:"updated_at"`
}
