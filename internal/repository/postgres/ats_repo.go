package postgres

import (
	"context"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type atsRepo struct {
	db *pgxpool.Pool
}

// NewATSRepository creates a new ATS repository
func NewATSRepository(db *pgxpool.Pool) domain.ATSRepository {
	return &atsRepo{db: db}
}

// ListApplicantRows returns one export row per application of the job, in
// submission order.
func (r *atsRepo) ListApplicantRows(ctx context.Context, jobID int64) ([]domain.ApplicantRow, error) {
	query := `
		SELECT
			a.id,
			COALESCE(NULLIF(u.name, ''), u.email, ''),
			COALESCE(u.email, ''),
			a.status,
			a.resume_url,
			a.created_at,
			a.updated_at,
			(SELECT COUNT(*) FROM interviews i WHERE i.application_id = a.id)
		FROM applications a
		LEFT JOIN users u ON a.candidate_id = u.id
		WHERE a.job_id = $1
		ORDER BY a.created_at`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ApplicantRow{}
	for rows.Next() {
		var row domain.ApplicantRow
		if err := rows.Scan(
			&row.ApplicationID, &row.CandidateName, &row.CandidateEmail, &row.Status,
			&row.ResumeURL, &row.AppliedAt, &row.LastChangeAt, &row.Interviews,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
