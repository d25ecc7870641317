package usecase

import (
	"context"
	"errors"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
)

// SessionCounter reports live realtime connections.
type SessionCounter interface {
	ActiveSessions() int
}

type dashboardUsecase struct {
	repo     domain.DashboardRepository
	health   HealthUsecase
	sessions SessionCounter
}

func NewDashboardUsecase(repo domain.DashboardRepository, health HealthUsecase, sessions SessionCounter) domain.DashboardUsecase {
	return &dashboardUsecase{repo: repo, health: health, sessions: sessions}
}

// AdminStats returns platform-wide statistics. Role checks happen in the router.
func (u *dashboardUsecase) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	stats, err := u.repo.GetAdminStats(ctx)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch statistics: " + err.Error()))
	}

	stats.SystemHealth = domain.SystemHealth{
		Status:      "healthy",
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	}
	if u.health != nil && u.health.Check(ctx)["status"] != "ok" {
		stats.SystemHealth.Status = "degraded"
	}
	if u.sessions != nil {
		stats.ActiveRealtimeSessions = u.sessions.ActiveSessions()
	}
	return stats, nil
}

// RecruiterStats rolls up the recruiter's own jobs.
func (u *dashboardUsecase) RecruiterStats(ctx context.Context, recruiter domain.Principal) (*domain.RecruiterStats, error) {
	if recruiter.ID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	stats, err := u.repo.GetRecruiterStats(ctx, recruiter.ID)
	if err != nil {
		return nil, apperror.Internal(errors.New("Failed to fetch statistics: " + err.Error()))
	}
	if stats.Jobs == nil {
		stats.Jobs = []domain.JobSummary{}
	}
	return stats, nil
}
