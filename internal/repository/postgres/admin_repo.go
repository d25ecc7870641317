package postgres

import (
	"context"
	"time"

	"go-placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type dashboardRepo struct {
	db *pgxpool.Pool
}

func NewDashboardRepository(db *pgxpool.Pool) domain.DashboardRepository {
	return &dashboardRepo{db: db}
}

// countBy runs a "SELECT key, COUNT(*) ... GROUP BY key" query into a map.
func (r *dashboardRepo) countBy(ctx context.Context, query string, args ...any) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// GetAdminStats fetches platform-wide dashboard statistics
func (r *dashboardRepo) GetAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	stats := &domain.AdminStats{
		SystemHealth: domain.SystemHealth{
			Status:      "healthy",
			LastChecked: time.Now().Format(time.RFC3339),
		},
	}

	roles, err := r.countBy(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	stats.UsersByRole = domain.UsersByRole{
		Admin:     roles[domain.RoleAdmin],
		Recruiter: roles[domain.RoleRecruiter],
		Candidate: roles[domain.RoleCandidate],
	}
	for _, n := range roles {
		stats.TotalUsers += n
	}

	if stats.JobsByStatus, err = r.countBy(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`); err != nil {
		return nil, err
	}
	for _, n := range stats.JobsByStatus {
		stats.TotalJobs += n
	}

	if stats.ApplicationsByStatus, err = r.countBy(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`); err != nil {
		return nil, err
	}
	for _, n := range stats.ApplicationsByStatus {
		stats.TotalApplications += n
	}

	err = r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM chats),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM notifications WHERE NOT is_read)`,
	).Scan(&stats.TotalChats, &stats.TotalMessages, &stats.UnreadNotifications)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetRecruiterStats aggregates the recruiter's own jobs and applications
func (r *dashboardRepo) GetRecruiterStats(ctx context.Context, recruiterID string) (*domain.RecruiterStats, error) {
	stats := &domain.RecruiterStats{Jobs: []domain.JobSummary{}}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1),
			(SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1 AND status = 'open'),
			(SELECT COUNT(*) FROM applications WHERE recruiter_id = $1 AND viewed_at IS NULL),
			(SELECT COUNT(*) FROM interviews i JOIN applications a ON i.application_id = a.id
				WHERE a.recruiter_id = $1 AND i.scheduled_at >= NOW() AND i.status IN ('scheduled', 'rescheduled'))`,
		recruiterID,
	).Scan(&stats.TotalJobs, &stats.OpenJobs, &stats.UnviewedApplications, &stats.UpcomingInterviews)
	if err != nil {
		return nil, err
	}

	if stats.ApplicationsByStatus, err = r.countBy(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE recruiter_id = $1 GROUP BY status`, recruiterID); err != nil {
		return nil, err
	}
	for _, n := range stats.ApplicationsByStatus {
		stats.TotalApplications += n
	}

	rows, err := r.db.Query(ctx, `
		SELECT j.id, j.title, j.status,
			COUNT(a.id),
			COUNT(a.id) FILTER (WHERE a.status = 'Shortlisted'),
			COUNT(a.id) FILTER (WHERE a.status = 'Selected')
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id
		WHERE j.recruiter_id = $1
		GROUP BY j.id
		ORDER BY j.created_at DESC`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.JobSummary
		if err := rows.Scan(&s.JobID, &s.Title, &s.Status, &s.Applications, &s.Shortlisted, &s.Selected); err != nil {
			return nil, err
		}
		stats.Jobs = append(stats.Jobs, s)
	}
	return stats, rows.Err()
}
