package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type savedJobRepo struct {
	db *pgxpool.Pool
}

func NewSavedJobRepository(db *pgxpool.Pool) domain.SavedJobRepository {
	return &savedJobRepo{db: db}
}

// Create relies on uq_saved_jobs_user_job for duplicates.
func (r *savedJobRepo) Create(ctx context.Context, s *domain.SavedJob) error {
	s.CreatedAt = time.Now().UTC()
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO saved_jobs (user_id, job_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		s.UserID, s.JobID, s.CreatedAt,
	).Scan(&s.ID)
	return mapError(err)
}

func (r *savedJobRepo) Delete(ctx context.Context, userID string, jobID int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func (r *savedJobRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedJob, error) {
	query := `
		SELECT s.id, s.user_id, s.job_id, s.created_at, ` + jobColumns + `
		FROM saved_jobs s
		JOIN jobs j ON s.job_id = j.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saved := []domain.SavedJob{}
	for rows.Next() {
		var s domain.SavedJob
		var job domain.Job
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.JobID, &s.CreatedAt,
			&job.ID, &job.RecruiterID, &job.CompanyID, &job.Title, &job.Description, &job.Location,
			&job.EmploymentType, &job.SalaryMin, &job.SalaryMax, &job.Status, &job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.Job = &job
		saved = append(saved, s)
	}
	return saved, rows.Err()
}

func (r *savedJobRepo) ListUserIDsByJob(ctx context.Context, jobID int64) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT user_id FROM saved_jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

type jobAlertRepo struct {
	db *pgxpool.Pool
}

func NewJobAlertRepository(db *pgxpool.Pool) domain.JobAlertRepository {
	return &jobAlertRepo{db: db}
}

const jobAlertColumns = `id, user_id, name, keywords, location, employment_type, salary_min, is_active, created_at`

func scanJobAlert(row pgx.Row) (*domain.JobAlert, error) {
	var a domain.JobAlert
	var keywords pq.StringArray
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &keywords, &a.Criteria.Location, &a.Criteria.EmploymentType,
		&a.Criteria.SalaryMin, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Criteria.Keywords = []string(keywords)
	if a.Criteria.Keywords == nil {
		a.Criteria.Keywords = []string{}
	}
	return &a, nil
}

func (r *jobAlertRepo) collect(rows pgx.Rows) ([]domain.JobAlert, error) {
	defer rows.Close()
	alerts := []domain.JobAlert{}
	for rows.Next() {
		a, err := scanJobAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (r *jobAlertRepo) Create(ctx context.Context, a *domain.JobAlert) error {
	a.CreatedAt = time.Now().UTC()
	a.IsActive = true
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO job_alerts (user_id, name, keywords, location, employment_type, salary_min, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		RETURNING id`,
		a.UserID, a.Name, pq.Array(a.Criteria.Keywords), a.Criteria.Location, a.Criteria.EmploymentType,
		a.Criteria.SalaryMin, a.CreatedAt,
	).Scan(&a.ID)
	return mapError(err)
}

func (r *jobAlertRepo) ListByUser(ctx context.Context, userID string) ([]domain.JobAlert, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+jobAlertColumns+` FROM job_alerts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *jobAlertRepo) ListActive(ctx context.Context) ([]domain.JobAlert, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+jobAlertColumns+` FROM job_alerts WHERE is_active`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *jobAlertRepo) SetActive(ctx context.Context, id int64, userID string, active bool) (*domain.JobAlert, error) {
	a, err := scanJobAlert(conn(ctx, r.db).QueryRow(ctx,
		`UPDATE job_alerts SET is_active = $1 WHERE id = $2 AND user_id = $3 RETURNING `+jobAlertColumns,
		active, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *jobAlertRepo) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM job_alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}
