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

type interviewRepo struct {
	db *pgxpool.Pool
}

func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const interviewColumns = `i.id, i.application_id, i.type, i.scheduled_at, i.duration_minutes, i.location,
	i.meeting_link, i.notes, i.status, i.feedback, i.created_at, i.updated_at, j.title, a.candidate_id`

const interviewJoins = `
	FROM interviews i
	JOIN applications a ON i.application_id = a.id
	LEFT JOIN jobs j ON a.job_id = j.id`

func scanInterview(row pgx.Row) (*domain.Interview, error) {
	var iv domain.Interview
	err := row.Scan(
		&iv.ID, &iv.ApplicationID, &iv.Type, &iv.ScheduledAt, &iv.DurationMinutes, &iv.Location,
		&iv.MeetingLink, &iv.Notes, &iv.Status, &iv.Feedback, &iv.CreatedAt, &iv.UpdatedAt,
		&iv.JobTitle, &iv.CandidateID,
	)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) collect(rows pgx.Rows) ([]domain.Interview, error) {
	defer rows.Close()
	interviews := []domain.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

func (r *interviewRepo) Create(ctx context.Context, iv *domain.Interview) error {
	query := `
		INSERT INTO interviews (application_id, type, scheduled_at, duration_minutes, location, meeting_link,
			notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`

	now := time.Now().UTC()
	iv.CreatedAt = now
	iv.UpdatedAt = now
	if iv.Status == "" {
		iv.Status = domain.InterviewScheduled
	}
	err := conn(ctx, r.db).QueryRow(ctx, query,
		iv.ApplicationID, iv.Type, iv.ScheduledAt, iv.DurationMinutes, iv.Location, iv.MeetingLink,
		iv.Notes, iv.Status, now,
	).Scan(&iv.ID)
	return mapError(err)
}

func (r *interviewRepo) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	iv, err := scanInterview(conn(ctx, r.db).QueryRow(ctx, `SELECT `+interviewColumns+interviewJoins+` WHERE i.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return iv, nil
}

func (r *interviewRepo) ListByApplication(ctx context.Context, applicationID int64) ([]domain.Interview, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+interviewColumns+interviewJoins+` WHERE i.application_id = $1 ORDER BY i.scheduled_at`, applicationID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *interviewRepo) ListUpcomingByRecruiter(ctx context.Context, recruiterID string, from time.Time, limit int) ([]domain.Interview, error) {
	query := `SELECT ` + interviewColumns + interviewJoins + `
		WHERE a.recruiter_id = $1 AND i.scheduled_at >= $2 AND i.status IN ('scheduled', 'rescheduled')
		ORDER BY i.scheduled_at
		LIMIT $3`
	rows, err := conn(ctx, r.db).Query(ctx, query, recruiterID, from, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *interviewRepo) UpdateStatus(ctx context.Context, id int64, status domain.InterviewStatus, scheduledAt *time.Time) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE interviews
		SET status = $1, scheduled_at = COALESCE($2, scheduled_at), updated_at = NOW()
		WHERE id = $3`, status, scheduledAt, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}

func (r *interviewRepo) SaveFeedback(ctx context.Context, id int64, fb domain.InterviewFeedback) error {
	raw, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE interviews SET feedback = $1::jsonb, updated_at = NOW() WHERE id = $2`, string(raw), id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(tag)
}
