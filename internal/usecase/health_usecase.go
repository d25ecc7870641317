package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Pinger is a dependency that can report liveness.
type Pinger func(ctx context.Context) error

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase checks every named dependency; a nil Pinger is skipped.
func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{"status": "ok"}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for name, ping := range u.checks {
		if ping == nil {
			result[name] = "disabled"
			continue
		}
		if err := ping(ctx); err != nil {
			result[name] = "down"
			result["status"] = "degraded"
			continue
		}
		result[name] = "up"
	}
	return result
}
