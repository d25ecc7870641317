package usecase

import (
	"context"
	"fmt"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/audit"
	"go-placement-backend/pkg/logger"
)

const defaultInterviewMinutes = 60

type interviewUsecase struct {
	interviewRepo   domain.InterviewRepository
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	tx              domain.Transactor
	notifier        domain.NotificationDispatcher
	audit           *audit.Logger
}

func NewInterviewUsecase(
	interviewRepo domain.InterviewRepository,
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	tx domain.Transactor,
	notifier domain.NotificationDispatcher,
	auditLog *audit.Logger,
) domain.InterviewUsecase {
	return &interviewUsecase{
		interviewRepo:   interviewRepo,
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		tx:              tx,
		notifier:        notifier,
		audit:           auditLog,
	}
}

// Schedule creates an interview for a shortlisted application. A Shortlisted
// application moves to Interview-Scheduled in the same transaction.
func (uc *interviewUsecase) Schedule(ctx context.Context, actor domain.Principal, applicationID int64, in domain.ScheduleInterviewInput) (*domain.Interview, error) {
	app, job, err := uc.ownedApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusShortlisted && app.Status != domain.StatusInterviewScheduled {
		return nil, apperror.Validation("Interviews can only be scheduled for shortlisted applications", domain.ErrIllegalTransition)
	}
	if err := validateInterviewType(in.Type); err != nil {
		return nil, err
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, apperror.Validation("scheduled_at must be in the future", nil)
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = defaultInterviewMinutes
	}

	iv := &domain.Interview{
		ApplicationID:   app.ID,
		Type:            in.Type,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
		MeetingLink:     in.MeetingLink,
		Notes:           in.Notes,
		Status:          domain.InterviewScheduled,
		JobTitle:        &job.Title,
		CandidateID:     &app.CandidateID,
	}

	var notification *domain.Notification
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.interviewRepo.Create(ctx, iv); err != nil {
			return err
		}
		if app.Status == domain.StatusShortlisted {
			note := fmt.Sprintf("%s interview on %s", iv.Type, iv.ScheduledAt.Format(time.RFC1123))
			var err error
			_, notification, err = applyTransition(ctx, uc.applicationRepo, uc.notifier, app, job, domain.StatusInterviewScheduled, &note, actor.ID)
			return err
		}
		var err error
		notification, err = uc.notifier.Record(ctx, interviewNotification(app, job, iv, "Interview scheduled", actor.ID))
		return err
	})
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}

	uc.notifier.Deliver(ctx, notification)
	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventInterviewScheduled,
		ActorID:   actor.ID,
		Subject:   "interview",
		SubjectID: iv.ID,
		Details:   map[string]interface{}{"application_id": app.ID, "scheduled_at": iv.ScheduledAt},
	})
	return iv, nil
}

// UpdateStatus moves a non-final interview to status. Rescheduling requires
// the new time.
func (uc *interviewUsecase) UpdateStatus(ctx context.Context, actor domain.Principal, interviewID int64, status string, scheduledAt *time.Time) (*domain.Interview, error) {
	next, err := domain.ParseInterviewStatus(status)
	if err != nil {
		return nil, toAppError(err, "")
	}

	iv, app, job, err := uc.ownedInterview(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status.IsFinal() {
		return nil, toAppError(domain.ErrInterviewTerminal, "")
	}
	if next == domain.InterviewRescheduled {
		if scheduledAt == nil || !scheduledAt.After(time.Now()) {
			return nil, apperror.Validation("Rescheduling requires a future scheduled_at", nil)
		}
	} else {
		scheduledAt = nil
	}

	if err := uc.interviewRepo.UpdateStatus(ctx, iv.ID, next, scheduledAt); err != nil {
		return nil, toAppError(err, "Interview not found")
	}
	updated, err := uc.interviewRepo.GetByID(ctx, iv.ID)
	if err != nil {
		return nil, toAppError(err, "Interview not found")
	}

	switch next {
	case domain.InterviewRescheduled:
		uc.notifyCandidate(ctx, app, job, updated, "Interview rescheduled", actor.ID)
	case domain.InterviewCancelled:
		uc.notifyCandidate(ctx, app, job, updated, "Interview cancelled", actor.ID)
	}

	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventInterviewUpdated,
		ActorID:   actor.ID,
		Subject:   "interview",
		SubjectID: iv.ID,
		Details:   map[string]interface{}{"from": string(iv.Status), "to": string(next)},
	})
	return updated, nil
}

// SubmitFeedback stores the recruiter's evaluation of a completed interview.
func (uc *interviewUsecase) SubmitFeedback(ctx context.Context, actor domain.Principal, interviewID int64, fb domain.InterviewFeedback) (*domain.Interview, error) {
	if fb.Rating < 1 || fb.Rating > 5 {
		return nil, apperror.Validation("rating must be between 1 and 5", nil)
	}
	switch fb.Recommendation {
	case domain.RecommendStrongHire, domain.RecommendHire, domain.RecommendNoHire, domain.RecommendStrongNoHire:
	default:
		return nil, apperror.Validation("Invalid recommendation", nil)
	}

	iv, _, _, err := uc.ownedInterview(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != domain.InterviewCompleted {
		return nil, toAppError(domain.ErrFeedbackRequiresComplete, "")
	}

	if err := uc.interviewRepo.SaveFeedback(ctx, iv.ID, fb); err != nil {
		return nil, toAppError(err, "Interview not found")
	}
	iv.Feedback = &fb
	return iv, nil
}

// ListByApplication is visible to the candidate and the owning recruiter.
func (uc *interviewUsecase) ListByApplication(ctx context.Context, actor domain.Principal, applicationID int64) ([]domain.Interview, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}
	if app.CandidateID != actor.ID {
		if actor.IsCandidate() {
			return nil, apperror.NotFound("Application not found")
		}
		if _, _, err := uc.ownedApplication(ctx, actor, applicationID); err != nil {
			return nil, err
		}
	}

	interviews, err := uc.interviewRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return interviews, nil
}

func (uc *interviewUsecase) ListUpcoming(ctx context.Context, actor domain.Principal) ([]domain.Interview, error) {
	interviews, err := uc.interviewRepo.ListUpcomingByRecruiter(ctx, actor.ID, time.Now().UTC(), 50)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return interviews, nil
}

func (uc *interviewUsecase) ownedApplication(ctx context.Context, actor domain.Principal, applicationID int64) (*domain.Application, *domain.Job, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, toAppError(err, "Application not found")
	}
	job, err := uc.jobRepo.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, toAppError(err, "Job not found")
	}
	if !job.OwnedBy(actor) {
		return nil, nil, apperror.Forbidden("You don't have permission to manage this application")
	}
	return app, job, nil
}

func (uc *interviewUsecase) ownedInterview(ctx context.Context, actor domain.Principal, interviewID int64) (*domain.Interview, *domain.Application, *domain.Job, error) {
	iv, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, nil, nil, toAppError(err, "Interview not found")
	}
	app, job, err := uc.ownedApplication(ctx, actor, iv.ApplicationID)
	if err != nil {
		return nil, nil, nil, err
	}
	return iv, app, job, nil
}

func (uc *interviewUsecase) notifyCandidate(ctx context.Context, app *domain.Application, job *domain.Job, iv *domain.Interview, title, actorID string) {
	// The status change already committed; a failed notification is only logged.
	if _, err := uc.notifier.Notify(ctx, interviewNotification(app, job, iv, title, actorID)); err != nil {
		logger.Log.Warn("Failed to notify interview change", "interview_id", iv.ID, "error", err)
	}
}

func interviewNotification(app *domain.Application, job *domain.Job, iv *domain.Interview, title, actorID string) domain.NotifyInput {
	return domain.NotifyInput{
		RecipientID:  app.CandidateID,
		SenderID:     actorID,
		Type:         domain.NotificationSystem,
		Title:        title,
		Message:      fmt.Sprintf("%s interview for %s on %s", iv.Type, job.Title, iv.ScheduledAt.Format(time.RFC1123)),
		RelatedID:    iv.ID,
		RelatedModel: domain.RelatedInterview,
		Link:         fmt.Sprintf("/candidate/applications/%d", app.ID),
	}
}

func validateInterviewType(t domain.InterviewType) error {
	switch t {
	case domain.InterviewPhone, domain.InterviewVideo, domain.InterviewInPerson, domain.InterviewTechnical, domain.InterviewHR:
		return nil
	}
	return apperror.Validation("Invalid interview type", nil)
}
