package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/audit"
	"go-placement-backend/pkg/logger"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	tx              domain.Transactor
	notifier        domain.NotificationDispatcher
	audit           *audit.Logger
}

// NewApplicationUsecase creates the application status engine
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	tx domain.Transactor,
	notifier domain.NotificationDispatcher,
	auditLog *audit.Logger,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		tx:              tx,
		notifier:        notifier,
		audit:           auditLog,
	}
}

// Submit creates an application in the Applied status and notifies the
// recruiter. The (candidate, job) unique constraint is the only duplicate check.
func (uc *applicationUsecase) Submit(ctx context.Context, candidate domain.Principal, in domain.SubmitApplicationInput) (*domain.Application, error) {
	// 1. Validate resume is provided (required)
	if strings.TrimSpace(in.ResumeURL) == "" {
		return nil, apperror.BadRequest("Resume is required to submit an application")
	}

	// 2. Validate job exists and is open
	job, err := uc.jobRepo.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}
	if !job.IsOpen() {
		return nil, apperror.BadRequest("Cannot apply to a closed job")
	}

	// 3. Insert; duplicates surface as a constraint violation
	now := time.Now().UTC()
	app := &domain.Application{
		CandidateID:   candidate.ID,
		JobID:         job.ID,
		RecruiterID:   job.RecruiterID,
		CompanyID:     job.CompanyID,
		ResumeURL:     in.ResumeURL,
		ResumeKey:     optional(in.ResumeKey),
		CoverLetter:   optional(in.CoverLetter),
		Status:        domain.StatusApplied,
		StatusHistory: []domain.StatusEntry{{Status: domain.StatusApplied, Timestamp: now}},
		JobTitle:      &job.Title,
	}

	var notification *domain.Notification
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.applicationRepo.Create(ctx, app); err != nil {
			return err
		}
		notification, err = uc.notifier.Record(ctx, domain.NotifyInput{
			RecipientID:  job.RecruiterID,
			SenderID:     candidate.ID,
			Type:         domain.NotificationApplicationSubmitted,
			Title:        "New application received",
			Message:      fmt.Sprintf("A candidate applied to %s", job.Title),
			RelatedID:    app.ID,
			RelatedModel: domain.RelatedApplication,
			Link:         fmt.Sprintf("/recruiter/applications/%d", app.ID),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("You have already applied to this job", err)
		}
		return nil, toAppError(err, "Job not found")
	}

	uc.notifier.Deliver(ctx, notification)
	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventApplicationSubmitted,
		ActorID:   candidate.ID,
		Subject:   "application",
		SubjectID: app.ID,
		Details:   map[string]interface{}{"job_id": job.ID},
	})
	return app, nil
}

// ListMine returns all applications of the candidate
func (uc *applicationUsecase) ListMine(ctx context.Context, candidate domain.Principal) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// Withdraw deletes a non-terminal application owned by the candidate.
// Applications of other candidates are reported as missing.
func (uc *applicationUsecase) Withdraw(ctx context.Context, candidate domain.Principal, applicationID int64) error {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return toAppError(err, "Application not found")
	}
	if app.CandidateID != candidate.ID {
		return apperror.NotFound("Application not found")
	}
	if app.Status.IsTerminal() {
		return toAppError(domain.ErrTerminalStatus, "")
	}

	if err := uc.applicationRepo.Delete(ctx, applicationID, candidate.ID, app.Version); err != nil {
		return toAppError(err, "Application not found")
	}

	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventApplicationWithdrawn,
		ActorID:   candidate.ID,
		Subject:   "application",
		SubjectID: applicationID,
	})
	return nil
}

// Transition moves one application to status. Checks run in a fixed order:
// enumeration, existence, ownership, terminal state, legality, then the
// version compare-and-swap.
func (uc *applicationUsecase) Transition(ctx context.Context, actor domain.Principal, applicationID int64, status string, note *string) (*domain.Application, error) {
	next, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, toAppError(err, "")
	}

	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}

	job, err := uc.authorizeJob(ctx, actor, app.JobID, applicationID)
	if err != nil {
		return nil, err
	}

	if err := app.Status.CheckTransition(next); err != nil {
		return nil, toAppError(err, "")
	}

	var updated *domain.Application
	var notification *domain.Notification
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, notification, err = applyTransition(ctx, uc.applicationRepo, uc.notifier, app, job, next, note, actor.ID)
		return err
	})
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}

	uc.notifier.Deliver(ctx, notification)
	uc.audit.Log(ctx, audit.Event{
		Type:      audit.EventStatusChanged,
		ActorID:   actor.ID,
		Subject:   "application",
		SubjectID: applicationID,
		Details:   map[string]interface{}{"from": string(app.Status), "to": string(next)},
	})
	return updated, nil
}

// BulkTransition authorizes every application before touching any, then
// applies all transitions in one transaction. Any failure rolls back the
// whole batch; notifications are pushed only after commit.
func (uc *applicationUsecase) BulkTransition(ctx context.Context, actor domain.Principal, applicationIDs []int64, status string, note *string) (*domain.BulkTransitionResult, error) {
	next, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, toAppError(err, "")
	}

	ids := dedupeIDs(applicationIDs)
	if len(ids) == 0 {
		return nil, apperror.BadRequest("application_ids must not be empty")
	}

	apps, err := uc.applicationRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[int64]domain.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperror.NotFound(fmt.Sprintf("Application %d not found", id))
		}
	}

	// Authorization for the whole batch before any mutation
	jobs := map[int64]*domain.Job{}
	for _, id := range ids {
		app := byID[id]
		if _, ok := jobs[app.JobID]; ok {
			continue
		}
		job, err := uc.authorizeJob(ctx, actor, app.JobID, id)
		if err != nil {
			return nil, err
		}
		jobs[app.JobID] = job
	}

	for _, id := range ids {
		app := byID[id]
		if err := app.Status.CheckTransition(next); err != nil {
			return nil, toAppError(fmt.Errorf("application %d: %w", id, err), "")
		}
	}

	result := &domain.BulkTransitionResult{Updated: make([]domain.Application, 0, len(ids))}
	var notifications []*domain.Notification
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		result.Updated = result.Updated[:0]
		notifications = notifications[:0]
		for _, id := range ids {
			app := byID[id]
			updated, n, err := applyTransition(ctx, uc.applicationRepo, uc.notifier, &app, jobs[app.JobID], next, note, actor.ID)
			if err != nil {
				return fmt.Errorf("application %d: %w", id, err)
			}
			result.Updated = append(result.Updated, *updated)
			notifications = append(notifications, n)
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}

	for _, n := range notifications {
		uc.notifier.Deliver(ctx, n)
	}
	uc.audit.Log(ctx, audit.Event{
		Type:    audit.EventBulkStatusChanged,
		ActorID: actor.ID,
		Subject: "application",
		Details: map[string]interface{}{"ids": ids, "to": string(next)},
	})
	return result, nil
}

// ListByJob returns all applications for a job the actor owns
func (uc *applicationUsecase) ListByJob(ctx context.Context, actor domain.Principal, jobID int64) ([]domain.Application, error) {
	if _, err := uc.validateJobOwnership(ctx, actor, jobID); err != nil {
		return nil, err
	}
	apps, err := uc.applicationRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// Pipeline groups the job's applications by status in pipeline order.
func (uc *applicationUsecase) Pipeline(ctx context.Context, actor domain.Principal, jobID int64) ([]domain.PipelineColumn, error) {
	apps, err := uc.ListByJob(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	return groupByStatus(apps), nil
}

// GetDetail is visible to the candidate who applied, the recruiter owning the
// job and admins. The owning recruiter's first view is recorded and the
// candidate is told their resume was viewed.
func (uc *applicationUsecase) GetDetail(ctx context.Context, actor domain.Principal, applicationID int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, toAppError(err, "Application not found")
	}

	if app.CandidateID == actor.ID {
		return app, nil
	}
	if actor.IsCandidate() {
		return nil, apperror.NotFound("Application not found")
	}

	job, err := uc.validateJobOwnership(ctx, actor, app.JobID)
	if err != nil {
		return nil, err
	}

	if app.ViewedAt == nil && job.RecruiterID == actor.ID {
		now := time.Now().UTC()
		first, err := uc.applicationRepo.MarkViewed(ctx, app.ID, now)
		if err != nil {
			logger.Log.Warn("Failed to mark application viewed", "application_id", app.ID, "error", err)
		} else if first {
			app.ViewedAt = &now
			if _, err := uc.notifier.Notify(ctx, domain.NotifyInput{
				RecipientID:  app.CandidateID,
				SenderID:     actor.ID,
				Type:         domain.NotificationResumeViewed,
				Title:        "Your resume was viewed",
				Message:      fmt.Sprintf("A recruiter viewed your application for %s", job.Title),
				RelatedID:    app.ID,
				RelatedModel: domain.RelatedApplication,
				Link:         fmt.Sprintf("/candidate/applications/%d", app.ID),
			}); err != nil {
				logger.Log.Warn("Failed to notify resume view", "application_id", app.ID, "error", err)
			}
		}
	}
	return app, nil
}

// validateJobOwnership loads the job and checks the actor may manage it
func (uc *applicationUsecase) validateJobOwnership(ctx context.Context, actor domain.Principal, jobID int64) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}
	if !job.OwnedBy(actor) {
		return nil, apperror.Forbidden("You don't have permission to manage this job")
	}
	return job, nil
}

// authorizeJob is validateJobOwnership for a transition; refusals are audited.
func (uc *applicationUsecase) authorizeJob(ctx context.Context, actor domain.Principal, jobID, applicationID int64) (*domain.Job, error) {
	job, err := uc.validateJobOwnership(ctx, actor, jobID)
	if err != nil && apperror.CodeOf(err) == http.StatusForbidden {
		uc.audit.Log(ctx, audit.Event{
			Type:      audit.EventTransitionForbidden,
			ActorID:   actor.ID,
			Subject:   "application",
			SubjectID: applicationID,
			Details:   map[string]interface{}{"job_id": jobID},
		})
	}
	return job, err
}

// applyTransition writes one history entry with a compare-and-swap on the
// version read by the caller and records the candidate notification. It must
// run inside a transaction so both writes commit together.
func applyTransition(
	ctx context.Context,
	repo domain.ApplicationRepository,
	notifier domain.NotificationDispatcher,
	app *domain.Application,
	job *domain.Job,
	next domain.ApplicationStatus,
	note *string,
	actorID string,
) (*domain.Application, *domain.Notification, error) {
	entry := domain.StatusEntry{Status: next, Timestamp: time.Now().UTC(), Note: trimNote(note)}
	updated, err := repo.UpdateStatus(ctx, app.ID, app.Version, entry)
	if err != nil {
		return nil, nil, err
	}

	n, err := notifier.Record(ctx, statusNotification(updated, job, next, actorID))
	if err != nil {
		return nil, nil, err
	}
	return updated, n, nil
}

// statusNotification builds the candidate-facing notification for entering next.
func statusNotification(app *domain.Application, job *domain.Job, next domain.ApplicationStatus, actorID string) domain.NotifyInput {
	title := job.Title
	var heading, body string
	switch next {
	case domain.StatusReviewed:
		heading, body = "Application reviewed", fmt.Sprintf("Your application for %s has been reviewed", title)
	case domain.StatusShortlisted:
		heading, body = "You've been shortlisted", fmt.Sprintf("You have been shortlisted for %s", title)
	case domain.StatusInterviewScheduled:
		heading, body = "Interview scheduled", fmt.Sprintf("An interview has been scheduled for %s", title)
	case domain.StatusRejected:
		heading, body = "Application update", fmt.Sprintf("Your application for %s was not selected to move forward", title)
	case domain.StatusSelected:
		heading, body = "Congratulations!", fmt.Sprintf("You have been selected for %s", title)
	default:
		heading, body = "Application update", fmt.Sprintf("Your application for %s is now %s", title, next)
	}

	return domain.NotifyInput{
		RecipientID:  app.CandidateID,
		SenderID:     actorID,
		Type:         next.NotificationType(),
		Title:        heading,
		Message:      body,
		RelatedID:    app.ID,
		RelatedModel: domain.RelatedApplication,
		Link:         fmt.Sprintf("/candidate/applications/%d", app.ID),
	}
}

func groupByStatus(apps []domain.Application) []domain.PipelineColumn {
	columns := make([]domain.PipelineColumn, len(domain.ApplicationStatuses))
	index := make(map[domain.ApplicationStatus]int, len(domain.ApplicationStatuses))
	for i, s := range domain.ApplicationStatuses {
		columns[i] = domain.PipelineColumn{Status: s, Applications: []domain.Application{}}
		index[s] = i
	}
	for _, app := range apps {
		i, ok := index[app.Status]
		if !ok {
			continue
		}
		columns[i].Applications = append(columns[i].Applications, app)
		columns[i].Count++
	}
	return columns
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
