package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `j.id, j.recruiter_id, j.company_id, j.title, j.description, j.location,
	j.employment_type, j.salary_min, j.salary_max, j.status, j.created_at, j.updated_at`

func scanJob(row pgx.Row, job *domain.Job, extra ...any) error {
	dest := []any{
		&job.ID, &job.RecruiterID, &job.CompanyID, &job.Title, &job.Description, &job.Location,
		&job.EmploymentType, &job.SalaryMin, &job.SalaryMax, &job.Status, &job.CreatedAt, &job.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (recruiter_id, company_id, title, description, location, employment_type,
				salary_min, salary_max, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, COALESCE($6, 'full-time'), $7, $8, $9, $10, $10) RETURNING id`

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}

	err := conn(ctx, r.db).QueryRow(ctx, query,
		job.RecruiterID, job.CompanyID, job.Title, job.Description, job.Location, job.EmploymentType,
		job.SalaryMin, job.SalaryMax, job.Status, now,
	).Scan(&job.ID)
	return mapError(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = $1`
	var job domain.Job
	if err := scanJob(conn(ctx, r.db).QueryRow(ctx, query, id), &job); err != nil {
		return nil, mapError(err)
	}
	return &job, nil
}

// GetByIDWithCompany retrieves a job with company details
func (r *jobRepo) GetByIDWithCompany(ctx context.Context, id int64) (*domain.JobWithCompany, error) {
	query := `
		SELECT ` + jobColumns + `, c.name, c.logo_url
		FROM jobs j
		LEFT JOIN companies c ON j.company_id = c.id
		WHERE j.id = $1`

	var job domain.JobWithCompany
	if err := scanJob(conn(ctx, r.db).QueryRow(ctx, query, id), &job.Job, &job.CompanyName, &job.CompanyLogoURL); err != nil {
		return nil, mapError(err)
	}
	return &job, nil
}

// FetchOpen lists open jobs, newest first, optionally filtered by a title or
// description search and a location substring.
func (r *jobRepo) FetchOpen(ctx context.Context, filter domain.JobFilter) ([]domain.JobWithCompany, int64, error) {
	where := `j.status = 'open'
		AND ($1::text = '' OR j.title ILIKE '%' || $1::text || '%' OR j.description ILIKE '%' || $1::text || '%')
		AND ($2::text = '' OR j.location ILIKE '%' || $2::text || '%')`

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM jobs j WHERE `+where, filter.Query, filter.Location).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + jobColumns + `, c.name, c.logo_url
		FROM jobs j
		LEFT JOIN companies c ON j.company_id = c.id
		WHERE ` + where + `
		ORDER BY j.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := conn(ctx, r.db).Query(ctx, query, filter.Query, filter.Location, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []domain.JobWithCompany{}
	for rows.Next() {
		var job domain.JobWithCompany
		if err := scanJob(rows, &job.Job, &job.CompanyName, &job.CompanyLogoURL); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (r *jobRepo) FetchByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.recruiter_id = $1 ORDER BY j.created_at DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := scanJob(rows, &job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	query := `UPDATE jobs SET title = $1, description = $2, location = $3,
				employment_type = COALESCE($4, employment_type), salary_min = $5, salary_max = $6, updated_at = $7
              WHERE id = $8`
	tag, err := conn(ctx, r.db).Exec(ctx, query,
		job.Title, job.Description, job.Location, job.EmploymentType, job.SalaryMin, job.SalaryMax, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func (r *jobRepo) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}
