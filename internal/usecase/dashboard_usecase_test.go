package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-placement-backend/internal/domain"
	"go-placement-backend/internal/usecase"
	"go-placement-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboardRepo struct {
	admin     *domain.AdminStats
	recruiter *domain.RecruiterStats
}

func (s stubDashboardRepo) GetAdminStats(context.Context) (*domain.AdminStats, error) {
	copied := *s.admin
	return &copied, nil
}

func (s stubDashboardRepo) GetRecruiterStats(context.Context, string) (*domain.RecruiterStats, error) {
	copied := *s.recruiter
	return &copied, nil
}

type stubHealth map[string]string

func (h stubHealth) Check(context.Context) map[string]string { return h }

type sessionCount int

func (n sessionCount) ActiveSessions() int { return int(n) }

func TestAdminStats(t *testing.T) {
	repo := stubDashboardRepo{admin: &domain.AdminStats{TotalUsers: 12}}

	stats, err := usecase.NewDashboardUsecase(repo, stubHealth{"status": "ok"}, sessionCount(3)).AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalUsers)
	assert.Equal(t, "healthy", stats.SystemHealth.Status)
	assert.Equal(t, 3, stats.ActiveRealtimeSessions)

	stats, err = usecase.NewDashboardUsecase(repo, stubHealth{"status": "degraded"}, nil).AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", stats.SystemHealth.Status)
}

func TestRecruiterStats(t *testing.T) {
	uc := usecase.NewDashboardUsecase(stubDashboardRepo{recruiter: &domain.RecruiterStats{}}, nil, nil)

	stats, err := uc.RecruiterStats(context.Background(), recruiter)
	require.NoError(t, err)
	assert.NotNil(t, stats.Jobs)

	_, err = uc.RecruiterStats(context.Background(), domain.Principal{})
	assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
}
