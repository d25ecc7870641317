package domain

import (
	"context"
	"time"
)

// Job status values
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

type Job struct {
	ID             int64     `json:"id"`
	RecruiterID    string    `json:"recruiter_id"`
	CompanyID      *int64    `json:"company_id,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	EmploymentType *string   `json:"employment_type,omitempty"`
	SalaryMin      float64   `json:"salary_min"`
	SalaryMax      float64   `json:"salary_max"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsOpen reports whether the job accepts applications.
func (j *Job) IsOpen() bool {
	return j.Status == JobStatusOpen
}

// OwnedBy reports whether the principal may act on the job's applications.
func (j *Job) OwnedBy(p Principal) bool {
	return p.IsAdmin() || j.RecruiterID == p.ID
}

// JobWithCompany extends Job with company information
type JobWithCompany struct {
	Job
	CompanyName    *string `json:"company_name,omitempty"`
	CompanyLogoURL *string `json:"company_logo_url,omitempty"`
}

// JobFilter narrows the public job listing.
type JobFilter struct {
	Query    string
	Location string
	Limit    int
	Offset   int
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	GetByIDWithCompany(ctx context.Context, id int64) (*JobWithCompany, error)
	FetchOpen(ctx context.Context, filter JobFilter) ([]JobWithCompany, int64, error)
	FetchByRecruiter(ctx context.Context, recruiterID string) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	SetStatus(ctx context.Context, id int64, status string) error
}

// JobInput carries the editable fields of a job posting.
type JobInput struct {
	Title          string
	Description    string
	Location       string
	EmploymentType *string
	SalaryMin      float64
	SalaryMax      float64
}

type JobUsecase interface {
	CreateJob(ctx context.Context, recruiter Principal, in JobInput) (*Job, error)
	GetJobDetails(ctx context.Context, id int64) (*JobWithCompany, error)
	ListOpenJobs(ctx context.Context, q, location string, page, pageSize int) (*PaginatedResult[JobWithCompany], error)
	ListMyJobs(ctx context.Context, recruiter Principal) ([]Job, error)
	UpdateJob(ctx context.Context, recruiter Principal, id int64, in JobInput) (*Job, error)
	CloseJob(ctx context.Context, recruiter Principal, id int64) error
}
