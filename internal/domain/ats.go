package domain

import (
	"context"
	"time"
)

// ============================================================================
// ATS Applicant Export
// ============================================================================

// Export formats
const (
	ExportXLSX = "xlsx"
	ExportCSV  = "csv"
)

// ApplicantRow is one applicant line of a job export.
type ApplicantRow struct {
	ApplicationID  int64             `json:"application_id"`
	CandidateName  string            `json:"candidate_name"`
	CandidateEmail string            `json:"candidate_email"`
	Status         ApplicationStatus `json:"status"`
	ResumeURL      string            `json:"resume_url"`
	AppliedAt      time.Time         `json:"applied_at"`
	LastChangeAt   time.Time         `json:"last_change_at"`
	Interviews     int               `json:"interviews"`
}

// ExportableColumns lists all columns that can be exported, in output order
var ExportableColumns = []string{
	"application_id",
	"candidate_name",
	"candidate_email",
	"status",
	"resume_url",
	"applied_at",
	"last_change_at",
	"interviews",
}

// ATSExportRequest represents the export configuration
type ATSExportRequest struct {
	JobID   int64
	Columns []string // empty means every column
	Format  string   // "xlsx" or "csv"
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ATSRepository defines data access for the applicant export
type ATSRepository interface {
	ListApplicantRows(ctx context.Context, jobID int64) ([]ApplicantRow, error)
}

// ATSUsecase defines business logic for the applicant export
type ATSUsecase interface {
	Export(ctx context.Context, actor Principal, req ATSExportRequest) (*ExportFile, error)
}
