package usecase

import (
	"context"
	"errors"
	"strings"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
)

const maxAlertKeywords = 20

type savedJobUsecase struct {
	savedJobRepo domain.SavedJobRepository
	alertRepo    domain.JobAlertRepository
	jobRepo      domain.JobRepository
}

func NewSavedJobUsecase(savedJobRepo domain.SavedJobRepository, alertRepo domain.JobAlertRepository, jobRepo domain.JobRepository) domain.SavedJobUsecase {
	return &savedJobUsecase{
		savedJobRepo: savedJobRepo,
		alertRepo:    alertRepo,
		jobRepo:      jobRepo,
	}
}

// SaveJob bookmarks a job; saving twice is a Conflict.
func (u *savedJobUsecase) SaveJob(ctx context.Context, userID string, jobID int64) (*domain.SavedJob, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}

	saved := &domain.SavedJob{UserID: userID, JobID: jobID, Job: job}
	if err := u.savedJobRepo.Create(ctx, saved); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Job already saved", err)
		}
		return nil, apperror.Internal(err)
	}
	return saved, nil
}

func (u *savedJobUsecase) UnsaveJob(ctx context.Context, userID string, jobID int64) error {
	if err := u.savedJobRepo.Delete(ctx, userID, jobID); err != nil {
		return toAppError(err, "Saved job not found")
	}
	return nil
}

func (u *savedJobUsecase) ListSavedJobs(ctx context.Context, userID string) ([]domain.SavedJob, error) {
	saved, err := u.savedJobRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return saved, nil
}

func (u *savedJobUsecase) CreateAlert(ctx context.Context, userID, name string, criteria domain.JobAlertCriteria) (*domain.JobAlert, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.BadRequest("Alert name is required")
	}

	keywords := make([]string, 0, len(criteria.Keywords))
	for _, kw := range criteria.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > maxAlertKeywords {
		return nil, apperror.Validation("Too many keywords", nil)
	}
	criteria.Keywords = keywords
	if criteria.SalaryMin < 0 {
		return nil, apperror.BadRequest("Salary cannot be negative")
	}

	alert := &domain.JobAlert{UserID: userID, Name: name, Criteria: criteria}
	if err := u.alertRepo.Create(ctx, alert); err != nil {
		return nil, apperror.Internal(err)
	}
	return alert, nil
}

func (u *savedJobUsecase) ListAlerts(ctx context.Context, userID string) ([]domain.JobAlert, error) {
	alerts, err := u.alertRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return alerts, nil
}

func (u *savedJobUsecase) ToggleAlert(ctx context.Context, userID string, id int64, active bool) (*domain.JobAlert, error) {
	alert, err := u.alertRepo.SetActive(ctx, id, userID, active)
	if err != nil {
		return nil, toAppError(err, "Job alert not found")
	}
	return alert, nil
}

func (u *savedJobUsecase) DeleteAlert(ctx context.Context, userID string, id int64) error {
	if err := u.alertRepo.Delete(ctx, id, userID); err != nil {
		return toAppError(err, "Job alert not found")
	}
	return nil
}
