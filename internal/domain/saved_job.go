package domain

import (
	"context"
	"strings"
	"time"
)

type SavedJob struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	JobID     int64     `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`

	Job *Job `json:"job,omitempty"`
}

// JobAlertCriteria is the freeform filter of a job alert. Empty fields match
// anything.
type JobAlertCriteria struct {
	Keywords       []string `json:"keywords"`
	Location       string   `json:"location,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	SalaryMin      float64  `json:"salary_min,omitempty"`
}

// Matches reports whether job satisfies every non-empty criterion. Keywords
// match case-insensitively against title or description; any keyword is
// enough.
func (c JobAlertCriteria) Matches(job *Job) bool {
	if job == nil {
		return false
	}
	if c.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(c.Location)) {
		return false
	}
	if c.EmploymentType != "" {
		if job.EmploymentType == nil || !strings.EqualFold(*job.EmploymentType, c.EmploymentType) {
			return false
		}
	}
	if c.SalaryMin > 0 && job.SalaryMax < c.SalaryMin {
		return false
	}
	if len(c.Keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(job.Title + " " + job.Description)
	for _, kw := range c.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

type JobAlert struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Name      string           `json:"name"`
	Criteria  JobAlertCriteria `json:"criteria"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
}

type SavedJobRepository interface {
	// Create returns ErrConflict when the job is already saved.
	Create(ctx context.Context, s *SavedJob) error
	Delete(ctx context.Context, userID string, jobID int64) error
	ListByUser(ctx context.Context, userID string) ([]SavedJob, error)
	ListUserIDsByJob(ctx context.Context, jobID int64) ([]string, error)
}

type JobAlertRepository interface {
	Create(ctx context.Context, a *JobAlert) error
	ListByUser(ctx context.Context, userID string) ([]JobAlert, error)
	ListActive(ctx context.Context) ([]JobAlert, error)
	SetActive(ctx context.Context, id int64, userID string, active bool) (*JobAlert, error)
	Delete(ctx context.Context, id int64, userID string) error
}

type SavedJobUsecase interface {
	SaveJob(ctx context.Context, userID string, jobID int64) (*SavedJob, error)
	UnsaveJob(ctx context.Context, userID string, jobID int64) error
	ListSavedJobs(ctx context.Context, userID string) ([]SavedJob, error)

	CreateAlert(ctx context.Context, userID, name string, criteria JobAlertCriteria) (*JobAlert, error)
	ListAlerts(ctx context.Context, userID string) ([]JobAlert, error)
	ToggleAlert(ctx context.Context, userID string, id int64, active bool) (*JobAlert, error)
	DeleteAlert(ctx context.Context, userID string, id int64) error
}
