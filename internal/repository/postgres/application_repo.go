package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `
	a.id, a.candidate_id, a.job_id, a.recruiter_id, a.company_id,
	a.resume_url, a.resume_key, a.cover_letter, a.status, a.status_history,
	a.version, a.viewed_at, a.created_at, a.updated_at,
	j.title, NULLIF(u.name, '')`

const applicationJoins = `
	FROM applications a
	LEFT JOIN jobs j ON a.job_id = j.id
	LEFT JOIN users u ON a.candidate_id = u.id`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.CandidateID, &app.JobID, &app.RecruiterID, &app.CompanyID,
		&app.ResumeURL, &app.ResumeKey, &app.CoverLetter, &app.Status, &app.StatusHistory,
		&app.Version, &app.ViewedAt, &app.CreatedAt, &app.UpdatedAt,
		&app.JobTitle, &app.CandidateName,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) list(ctx context.Context, where string, args ...any) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + applicationJoins + ` WHERE ` + where + ` ORDER BY a.created_at DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// Create inserts a new application; the (candidate_id, job_id) unique
// constraint decides duplicates.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}

	query := `
		INSERT INTO applications (candidate_id, job_id, recruiter_id, company_id, resume_url, resume_key,
			cover_letter, status, status_history, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, 1, $10, $10)
		RETURNING id, version`

	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	err = conn(ctx, r.db).QueryRow(ctx, query,
		app.CandidateID,
		app.JobID,
		app.RecruiterID,
		app.CompanyID,
		app.ResumeURL,
		app.ResumeKey,
		app.CoverLetter,
		app.Status,
		string(history),
		now,
	).Scan(&app.ID, &app.Version)
	return mapError(err)
}

// GetByID retrieves an application by ID with joined job and candidate data
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + applicationJoins + ` WHERE a.id = $1`

	app, err := scanApplication(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return app, nil
}

func (r *applicationRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Application, error) {
	if len(ids) == 0 {
		return []domain.Application{}, nil
	}
	return r.list(ctx, `a.id = ANY($1::bigint[])`, ids)
}

// ListByJob retrieves all applications for a job
func (r *applicationRepo) ListByJob(ctx context.Context, jobID int64) ([]domain.Application, error) {
	return r.list(ctx, `a.job_id = $1`, jobID)
}

// ListByCandidate retrieves all applications of a candidate with job titles
func (r *applicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	return r.list(ctx, `a.candidate_id = $1`, candidateID)
}

// UpdateStatus is a single-row compare-and-swap: status, history append and
// version bump happen in one statement guarded by the expected version.
func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, expectedVersion int, entry domain.StatusEntry) (*domain.Application, error) {
	appended, err := json.Marshal([]domain.StatusEntry{entry})
	if err != nil {
		return nil, fmt.Errorf("encode status entry: %w", err)
	}

	query := `
		UPDATE applications
		SET status = $1,
			status_history = status_history || $2::jsonb,
			version = version + 1,
			updated_at = $3
		WHERE id = $4 AND version = $5`

	tag, err := conn(ctx, r.db).Exec(ctx, query, entry.Status, string(appended), entry.Timestamp, id, expectedVersion)
	if err != nil {
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a vanished row from a lost race.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrVersionConflict
	}
	return r.GetByID(ctx, id)
}

func (r *applicationRepo) MarkViewed(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE applications SET viewed_at = $1 WHERE id = $2 AND viewed_at IS NULL`, at, id)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a candidate's own application unless it changed since it
// was read.
func (r *applicationRepo) Delete(ctx context.Context, id int64, candidateID string, expectedVersion int) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM applications WHERE id = $1 AND candidate_id = $2 AND version = $3`,
		id, candidateID, expectedVersion)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *applicationRepo) ListOpenCandidateIDs(ctx context.Context, jobID int64) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT candidate_id FROM applications
		WHERE job_id = $1 AND status NOT IN ('Rejected', 'Selected')`, jobID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
