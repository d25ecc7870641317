package domain

import (
	"context"
	"time"
)

// ApplicationStatus is the ATS pipeline stage of an application. Values are
// wire contracts: case-sensitive, no synonyms.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "Applied"
	StatusReviewed           ApplicationStatus = "Reviewed"
	StatusShortlisted        ApplicationStatus = "Shortlisted"
	StatusInterviewScheduled ApplicationStatus = "Interview-Scheduled"
	StatusRejected           ApplicationStatus = "Rejected"
	StatusSelected           ApplicationStatus = "Selected"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusReviewed,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusRejected,
	StatusSelected,
}

// ParseApplicationStatus accepts only the exact enumeration values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further transition is accepted.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusSelected
}

// CheckTransition validates moving from s to next. Applied is only reachable
// through submission and a status cannot transition to itself.
func (s ApplicationStatus) CheckTransition(next ApplicationStatus) error {
	if _, err := ParseApplicationStatus(string(next)); err != nil {
		return err
	}
	if s.IsTerminal() {
		return ErrTerminalStatus
	}
	if next == StatusApplied || next == s {
		return ErrIllegalTransition
	}
	return nil
}

// NotificationType is the candidate-facing notification for entering s.
func (s ApplicationStatus) NotificationType() NotificationType {
	switch s {
	case StatusApplied:
		return NotificationApplicationSubmitted
	case StatusReviewed:
		return NotificationApplicationReviewed
	case StatusShortlisted:
		return NotificationApplicationShortlisted
	case StatusRejected:
		return NotificationApplicationRejected
	case StatusSelected:
		return NotificationApplicationApproved
	default:
		return NotificationSystem
	}
}

// StatusEntry is one element of an application's status history.
type StatusEntry struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Note      *string           `json:"note,omitempty"`
}

// Application represents a job application from a candidate
type Application struct {
	ID            int64             `json:"id"`
	CandidateID   string            `json:"candidate_id"`
	JobID         int64             `json:"job_id"`
	RecruiterID   string            `json:"recruiter_id"`
	CompanyID     *int64            `json:"company_id,omitempty"`
	ResumeURL     string            `json:"resume_url"`
	ResumeKey     *string           `json:"resume_key,omitempty"`
	CoverLetter   *string           `json:"cover_letter,omitempty"`
	Status        ApplicationStatus `json:"status"`
	StatusHistory []StatusEntry     `json:"status_history"`
	Version       int               `json:"version"`
	ViewedAt      *time.Time        `json:"viewed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Joined data for list responses
	JobTitle      *string `json:"job_title,omitempty"`
	CandidateName *string `json:"candidate_name,omitempty"`
}

// SubmitApplicationInput carries a candidate submission.
type SubmitApplicationInput struct {
	JobID       int64
	ResumeURL   string
	ResumeKey   string
	CoverLetter string
}

// PipelineColumn is one status column of the ATS board.
type PipelineColumn struct {
	Status       ApplicationStatus `json:"status"`
	Count        int               `json:"count"`
	Applications []Application     `json:"applications"`
}

// BulkTransitionResult reports the applications a bulk transition changed.
type BulkTransitionResult struct {
	Updated []Application `json:"updated"`
}

// ApplicationRepository defines data access methods for applications
type ApplicationRepository interface {
	// Create fails with ErrConflict when (candidate, job) already exists.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Application, error)
	ListByJob(ctx context.Context, jobID int64) ([]Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Application, error)
	// UpdateStatus appends entry to the history when the stored version still
	// equals expectedVersion; otherwise ErrVersionConflict.
	UpdateStatus(ctx context.Context, id int64, expectedVersion int, entry StatusEntry) (*Application, error)
	// MarkViewed sets viewed_at once and reports whether this call set it.
	MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error)
	// Delete removes the candidate's application if its version is still
	// expectedVersion; a concurrent change yields ErrVersionConflict.
	Delete(ctx context.Context, id int64, candidateID string, expectedVersion int) error
	// ListOpenCandidateIDs returns candidates with a non-terminal application on the job.
	ListOpenCandidateIDs(ctx context.Context, jobID int64) ([]string, error)
}

// ApplicationUsecase is the Application Status Engine.
type ApplicationUsecase interface {
	// Candidate operations
	Submit(ctx context.Context, candidate Principal, in SubmitApplicationInput) (*Application, error)
	ListMine(ctx context.Context, candidate Principal) ([]Application, error)
	Withdraw(ctx context.Context, candidate Principal, applicationID int64) error

	// Recruiter operations
	Transition(ctx context.Context, actor Principal, applicationID int64, status string, note *string) (*Application, error)
	BulkTransition(ctx context.Context, actor Principal, applicationIDs []int64, status string, note *string) (*BulkTransitionResult, error)
	ListByJob(ctx context.Context, actor Principal, jobID int64) ([]Application, error)
	Pipeline(ctx context.Context, actor Principal, jobID int64) ([]PipelineColumn, error)

	// Shared
	GetDetail(ctx context.Context, actor Principal, applicationID int64) (*Application, error)
}
