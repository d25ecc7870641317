package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/audit"
	"go-placement-backend/pkg/logger"
)

type jobUsecase struct {
	jobRepo         domain.JobRepository
	companyRepo     domain.CompanyRepository
	applicationRepo domain.ApplicationRepository
	savedJobRepo    domain.SavedJobRepository
	alertRepo       domain.JobAlertRepository
	notifier        domain.NotificationDispatcher
	audit           *audit.Logger
}

func NewJobUsecase(
	jobRepo domain.JobRepository,
	companyRepo domain.CompanyRepository,
	appRepo domain.ApplicationRepository,
	savedJobRepo domain.SavedJobRepository,
	alertRepo domain.JobAlertRepository,
	notifier domain.NotificationDispatcher,
	auditLog *audit.Logger,
) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:         jobRepo,
		companyRepo:     companyRepo,
		applicationRepo: appRepo,
		savedJobRepo:    savedJobRepo,
		alertRepo:       alertRepo,
		notifier:        notifier,
		audit:           auditLog,
	}
}

// CreateJob posts an open job and tells owners of matching job alerts.
func (u *jobUsecase) CreateJob(ctx context.Context, recruiter domain.Principal, in domain.JobInput) (*domain.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}

	job := &domain.Job{
		RecruiterID:    recruiter.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Location:       in.Location,
		EmploymentType: in.EmploymentType,
		SalaryMin:      in.SalaryMin,
		SalaryMax:      in.SalaryMax,
		Status:         domain.JobStatusOpen,
	}

	// A recruiter without a company profile still posts under their own name
	company, err := u.companyRepo.GetByOwner(ctx, recruiter.ID)
	switch {
	case err == nil:
		job.CompanyID = &company.ID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, apperror.Internal(err)
	}

	u.notifyAlertMatches(ctx, job)
	return job, nil
}

func (u *jobUsecase) GetJobDetails(ctx context.Context, id int64) (*domain.JobWithCompany, error) {
	job, err := u.jobRepo.GetByIDWithCompany(ctx, id)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}
	return job, nil
}

// ListOpenJobs returns open jobs for the public board
func (u *jobUsecase) ListOpenJobs(ctx context.Context, q, location string, page, pageSize int) (*domain.PaginatedResult[domain.JobWithCompany], error) {
	page, pageSize = normalizePage(page, pageSize)
	jobs, total, err := u.jobRepo.FetchOpen(ctx, domain.JobFilter{
		Query:    strings.TrimSpace(q),
		Location: strings.TrimSpace(location),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(jobs, total, page, pageSize), nil
}

func (u *jobUsecase) ListMyJobs(ctx context.Context, recruiter domain.Principal) ([]domain.Job, error) {
	jobs, err := u.jobRepo.FetchByRecruiter(ctx, recruiter.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

// UpdateJob edits an owned job and tells users who saved it.
func (u *jobUsecase) UpdateJob(ctx context.Context, recruiter domain.Principal, id int64, in domain.JobInput) (*domain.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}
	job, err := u.ownedJob(ctx, recruiter, id)
	if err != nil {
		return nil, err
	}

	job.Title = strings.TrimSpace(in.Title)
	job.Description = in.Description
	job.Location = in.Location
	if in.EmploymentType != nil {
		job.EmploymentType = in.EmploymentType
	}
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, toAppError(err, "Job not found")
	}

	userIDs, err := u.savedJobRepo.ListUserIDsByJob(ctx, job.ID)
	if err != nil {
		logger.Log.Warn("Failed to load job savers", "job_id", job.ID, "error", err)
	}
	u.fanOut(ctx, userIDs, recruiter.ID, job, domain.NotificationJobUpdated, "Saved job updated",
		fmt.Sprintf("%s has been updated", job.Title))
	return job, nil
}

// CloseJob stops accepting applications and tells candidates still in the
// pipeline.
func (u *jobUsecase) CloseJob(ctx context.Context, recruiter domain.Principal, id int64) error {
	job, err := u.ownedJob(ctx, recruiter, id)
	if err != nil {
		return err
	}
	if !job.IsOpen() {
		return apperror.Conflict("Job is already closed", nil)
	}

	if err := u.jobRepo.SetStatus(ctx, job.ID, domain.JobStatusClosed); err != nil {
		return toAppError(err, "Job not found")
	}

	candidateIDs, err := u.applicationRepo.ListOpenCandidateIDs(ctx, job.ID)
	if err != nil {
		logger.Log.Warn("Failed to load active applicants", "job_id", job.ID, "error", err)
	}
	u.fanOut(ctx, candidateIDs, recruiter.ID, job, domain.NotificationJobClosed, "Job closed",
		fmt.Sprintf("%s is no longer accepting applications", job.Title))

	u.audit.Log(ctx, audit.Event{
		Type:      audit.EventJobClosed,
		ActorID:   recruiter.ID,
		Subject:   "job",
		SubjectID: job.ID,
		Details:   map[string]interface{}{"notified": len(candidateIDs)},
	})
	return nil
}

func (u *jobUsecase) ownedJob(ctx context.Context, recruiter domain.Principal, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}
	if !job.OwnedBy(recruiter) {
		return nil, apperror.Forbidden("You don't have permission to manage this job")
	}
	return job, nil
}

func (u *jobUsecase) notifyAlertMatches(ctx context.Context, job *domain.Job) {
	alerts, err := u.alertRepo.ListActive(ctx)
	if err != nil {
		logger.Log.Warn("Failed to load job alerts", "job_id", job.ID, "error", err)
		return
	}

	seen := map[string]bool{}
	var recipients []string
	for _, alert := range alerts {
		if seen[alert.UserID] || alert.UserID == job.RecruiterID || !alert.Criteria.Matches(job) {
			continue
		}
		seen[alert.UserID] = true
		recipients = append(recipients, alert.UserID)
	}
	u.fanOut(ctx, recipients, job.RecruiterID, job, domain.NotificationJobPosted, "New job matches your alert",
		fmt.Sprintf("%s in %s", job.Title, job.Location))
}

// fanOut notifies each recipient; failures are logged and skipped.
func (u *jobUsecase) fanOut(ctx context.Context, recipients []string, senderID string, job *domain.Job, typ domain.NotificationType, title, message string) {
	for _, userID := range recipients {
		_, err := u.notifier.Notify(ctx, domain.NotifyInput{
			RecipientID:  userID,
			SenderID:     senderID,
			Type:         typ,
			Title:        title,
			Message:      message,
			RelatedID:    job.ID,
			RelatedModel: domain.RelatedJob,
			Link:         fmt.Sprintf("/jobs/%d", job.ID),
		})
		if err != nil {
			logger.Log.Warn("Failed to notify job event", "job_id", job.ID, "recipient", userID, "type", typ, "error", err)
		}
	}
}

func validateJobInput(in domain.JobInput) error {
	// Business Validation
	if strings.TrimSpace(in.Title) == "" {
		return apperror.BadRequest("Title is required")
	}
	if in.SalaryMin < 0 || in.SalaryMax < 0 {
		return apperror.BadRequest("Salary cannot be negative")
	}
	if in.SalaryMax > 0 && in.SalaryMin > in.SalaryMax {
		return apperror.BadRequest("SalaryMin cannot be greater than SalaryMax")
	}
	return nil
}
