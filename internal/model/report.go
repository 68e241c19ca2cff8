package model

import (
	"fmt"
	"strings"
	"time"
)

type ReportType string

const (
	ReportTypeJSONExport   ReportType = "json-export"
	ReportTypePartnership  ReportType = "partnership"
	ReportTypeSingleDomain ReportType = "single-domain"
)

// ReportTypeValues lists the accepted reportType values in a stable order,
// used verbatim in validation error messages.
func ReportTypeValues() []string {
	return []string{
		string(ReportTypeJSONExport),
		string(ReportTypePartnership),
		string(ReportTypeSingleDomain),
	}
}

func ParseReportType(s string) (ReportType, error) {
	switch ReportType(s) {
	case ReportTypeJSONExport, ReportTypePartnership, ReportTypeSingleDomain:
		return ReportType(s), nil
	default:
		return "", fmt.Errorf("invalid reportType %q; valid values: %s", s, strings.Join(ReportTypeValues(), ", "))
	}
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusReady      JobStatus = "READY_FOR_DOWNLOAD"
	JobStatusError      JobStatus = "ERROR"
)

// DownloadJob is the unit of work tracked by downloadId, representing one
// report-generation request end to end. It lives only for the duration of
// the request; the partner API is the system of record for its status.
type DownloadJob struct {
	TenantID   string
	BrandID    string
	DownloadID string
	ReportType ReportType
	Status     JobStatus
}

// DownloadStatusUpdate is the body of the status PUT sent to the partner API.
type DownloadStatusUpdate struct {
	Status   JobStatus `json:"status"`
	FilePath string    `json:"filePath,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ReportMetadata carries presentation fields supplied by the caller.
type ReportMetadata struct {
	Title        string     `json:"title,omitempty"`
	BrandName    string     `json:"brandName,omitempty"`
	BrandLogoURL string     `json:"brandLogoUrl,omitempty"`
	DateRange    *DateRange `json:"dateRange,omitempty"`
}

// Artifact describes the uploaded report object.
type Artifact struct {
	FileName    string
	Path        string
	ContentType string
	Size        int
}

// ArtifactFileName builds the object file name for a job:
// {reportType}-{downloadId}-{timestamp}{ext}, with ':' and '.' in the
// timestamp replaced by '-' so the name is safe as an object key segment.
func ArtifactFileName(job DownloadJob, at time.Time, ext string) string {
	ts := at.UTC().Format(time.RFC3339)
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("%s-%s-%s%s", job.ReportType, job.DownloadID, ts, ext)
}
