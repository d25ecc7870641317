package domain

import (
	"context"
	"time"
)

type InterviewType string

const (
	InterviewPhone     InterviewType = "phone"
	InterviewVideo     InterviewType = "video"
	InterviewInPerson  InterviewType = "in-person"
	InterviewTechnical InterviewType = "technical"
	InterviewHR        InterviewType = "hr"
)

type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewNoShow      InterviewStatus = "no-show"
)

// ParseInterviewStatus accepts only the enumerated values.
func ParseInterviewStatus(s string) (InterviewStatus, error) {
	switch st := InterviewStatus(s); st {
	case InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow:
		return st, nil
	}
	return "", ErrInvalidInterviewStatus
}

// IsFinal reports whether the interview can no longer change status.
func (s InterviewStatus) IsFinal() bool {
	return s == InterviewCompleted || s == InterviewCancelled || s == InterviewNoShow
}

// Recommendation values for feedback
const (
	RecommendStrongHire   = "strong-hire"
	RecommendHire         = "hire"
	RecommendNoHire       = "no-hire"
	RecommendStrongNoHire = "strong-no-hire"
)

type InterviewFeedback struct {
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Comments       string `json:"comments" binding:"max=5000"`
	Recommendation string `json:"recommendation" binding:"required,oneof=strong-hire hire no-hire strong-no-hire"`
}

type Interview struct {
	ID              int64              `json:"id"`
	ApplicationID   int64              `json:"application_id"`
	Type            InterviewType      `json:"type"`
	ScheduledAt     time.Time          `json:"scheduled_at"`
	DurationMinutes int                `json:"duration_minutes"`
	Location        *string            `json:"location,omitempty"`
	MeetingLink     *string            `json:"meeting_link,omitempty"`
	Notes           string             `json:"notes"`
	Status          InterviewStatus    `json:"status"`
	Feedback        *InterviewFeedback `json:"feedback,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	// Joined data
	JobTitle    *string `json:"job_title,omitempty"`
	CandidateID *string `json:"candidate_id,omitempty"`
}

type ScheduleInterviewInput struct {
	Type            InterviewType
	ScheduledAt     time.Time
	DurationMinutes int
	Location        *string
	MeetingLink     *string
	Notes           string
}

type InterviewRepository interface {
	Create(ctx context.Context, iv *Interview) error
	GetByID(ctx context.Context, id int64) (*Interview, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]Interview, error)
	ListUpcomingByRecruiter(ctx context.Context, recruiterID string, from time.Time, limit int) ([]Interview, error)
	UpdateStatus(ctx context.Context, id int64, status InterviewStatus, scheduledAt *time.Time) error
	SaveFeedback(ctx context.Context, id int64, fb InterviewFeedback) error
}

type InterviewUsecase interface {
	Schedule(ctx context.Context, actor Principal, applicationID int64, in ScheduleInterviewInput) (*Interview, error)
	UpdateStatus(ctx context.Context, actor Principal, interviewID int64, status string, scheduledAt *time.Time) (*Interview, error)
	SubmitFeedback(ctx context.Context, actor Principal, interviewID int64, fb InterviewFeedback) (*Interview, error)
	ListByApplication(ctx context.Context, actor Principal, applicationID int64) ([]Interview, error)
	ListUpcoming(ctx context.Context, actor Principal) ([]Interview, error)
}
