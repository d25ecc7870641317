package domain

import "context"

// AdminStats contains platform-wide dashboard statistics
type AdminStats struct {
	TotalUsers             int64            `json:"totalUsers"`
	UsersByRole            UsersByRole      `json:"usersByRole"`
	TotalJobs              int64            `json:"totalJobs"`
	JobsByStatus           map[string]int64 `json:"jobsByStatus"`
	TotalApplications      int64            `json:"totalApplications"`
	ApplicationsByStatus   map[string]int64 `json:"applicationsByStatus"`
	TotalChats             int64            `json:"totalChats"`
	TotalMessages          int64            `json:"totalMessages"`
	UnreadNotifications    int64            `json:"unreadNotifications"`
	SystemHealth           SystemHealth     `json:"systemHealth"`
	ActiveRealtimeSessions int              `json:"activeRealtimeSessions"`
}

type UsersByRole struct {
	Admin     int64 `json:"admin"`
	Recruiter int64 `json:"recruiter"`
	Candidate int64 `json:"candidate"`
}

type SystemHealth struct {
	Status      string `json:"status"`      // "healthy", "degraded"
	LastChecked string `json:"lastChecked"` // ISO8601 timestamp
}

// RecruiterStats is the recruiter dashboard rollup over owned jobs.
type RecruiterStats struct {
	TotalJobs            int64            `json:"totalJobs"`
	OpenJobs             int64            `json:"openJobs"`
	TotalApplications    int64            `json:"totalApplications"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	UnviewedApplications int64            `json:"unviewedApplications"`
	UpcomingInterviews   int64            `json:"upcomingInterviews"`
	Jobs                 []JobSummary     `json:"jobs"`
}

// JobSummary is one row of the per-job breakdown.
type JobSummary struct {
	JobID        int64  `json:"jobId"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Applications int64  `json:"applications"`
	Shortlisted  int64  `json:"shortlisted"`
	Selected     int64  `json:"selected"`
}

// PaginatedResult is a generic paginated response
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResult fills in TotalPages.
func NewPaginatedResult[T any](data []T, total int64, page, pageSize int) *PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// DashboardRepository defines the read-only aggregation queries
type DashboardRepository interface {
	GetAdminStats(ctx context.Context) (*AdminStats, error)
	GetRecruiterStats(ctx context.Context, recruiterID string) (*RecruiterStats, error)
}

// DashboardUsecase defines dashboard business logic
type DashboardUsecase interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
	RecruiterStats(ctx context.Context, recruiter Principal) (*RecruiterStats, error)
}
