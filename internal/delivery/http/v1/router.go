package v1

import (
	"context"
	"net/http"

	"go-placement-backend/config"
	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"
	"go-placement-backend/internal/realtime"
	"go-placement-backend/pkg/validation"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthChecker reports per-dependency status; "status" holds the overall verdict.
type HealthChecker interface {
	Check(ctx context.Context) map[string]string
}

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	JobUC          domain.JobUsecase
	SavedJobUC     domain.SavedJobUsecase
	ApplicationUC  domain.ApplicationUsecase
	InterviewUC    domain.InterviewUsecase
	ATSUC          domain.ATSUsecase
	DashboardUC    domain.DashboardUsecase
	NotificationUC domain.NotificationUsecase
	ChatUC         domain.ChatUsecase
	UploadUC       domain.UploadUsecase
	Health         HealthChecker
	Hub            *realtime.Hub
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(deps.Config.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config.GinMode == gin.ReleaseMode))
	// websocket upgrades must not be wrapped by the gzip writer
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/v1/ws", "/metrics"})))
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Success(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Per-IP ceiling for everything, including anonymous job browsing.
	limited := v1.Group("")
	limited.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(
		deps.Config.RateLimitIPPerWindow,
		deps.Config.RateLimitWindow,
		deps.Config.RateLimitRPS,
		deps.Config.RateLimitBurst,
	)))

	// Authenticated routes, limited per user once the token is verified
	protected := limited.Group("")
	protected.Use(
		middleware.AuthMiddleware(deps.Config.JWTSecret, deps.AuthUC),
		middleware.RateLimitMiddleware(middleware.UserRateLimitConfig(
			deps.Config.RateLimitPerWindow,
			deps.Config.RateLimitWindow,
			deps.Config.RateLimitRPS,
			deps.Config.RateLimitBurst,
		)),
	)

	candidates := protected.Group("/candidates", middleware.RequireRole(domain.RoleCandidate))
	recruiters := protected.Group("/recruiters", middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin))
	admins := protected.Group("/admin", middleware.RequireRole(domain.RoleAdmin))

	uploadLimiter := middleware.NewUploadLimiter(deps.Config.UploadLimitPerMinute, deps.Config.UploadLimitPerDay)

	NewAuthHandler(protected, deps.AuthUC)
	NewJobHandler(limited, recruiters, deps.JobUC)
	NewSavedJobHandler(candidates, deps.SavedJobUC)
	NewApplicationHandler(candidates, recruiters, deps.ApplicationUC)
	NewInterviewHandler(recruiters, deps.InterviewUC)
	NewATSHandler(recruiters, deps.ATSUC)
	NewDashboardHandler(admins, recruiters, deps.DashboardUC)
	NewNotificationHandler(protected, deps.NotificationUC)
	NewChatHandler(protected, deps.ChatUC)
	NewUploadHandler(protected, deps.UploadUC, uploadLimiter.Handler())
	NewRealtimeHandler(protected, deps.Hub, deps.ChatUC, deps.Config.CORSAllowedOrigins)

	return r
}
