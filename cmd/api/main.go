package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-placement-backend/config"
	_ "go-placement-backend/docs" // Important for Swagger
	v1 "go-placement-backend/internal/delivery/http/v1"
	"go-placement-backend/internal/domain"
	"go-placement-backend/internal/realtime"
	"go-placement-backend/internal/repository/postgres"
	"go-placement-backend/internal/usecase"
	"go-placement-backend/migrations"
	"go-placement-backend/pkg/antivirus"
	"go-placement-backend/pkg/audit"
	"go-placement-backend/pkg/database"
	"go-placement-backend/pkg/logger"
	"go-placement-backend/pkg/redis"
	"go-placement-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

// @title           Placement Backend API
// @version         1.0
// @description     Job placement backend: applications, notifications, chat and realtime delivery.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting placement backend", "port", cfg.Port, "realtime_backend", cfg.RealtimeBackend)

	auditLog := audit.Nop()
	if cfg.AuditLogEnabled {
		auditLog = audit.New("placement-backend")
	}
	defer auditLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-process rate limiting and delivery", "error", err)
		}
	}

	// 5. Setup Object Storage (optional)
	var objectStore usecase.ObjectStore
	if cfg.StorageConfigured() {
		s3Store, err := storage.NewS3Storage(ctx, storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Warn("Object storage disabled", "error", err)
		} else {
			objectStore = s3Store
		}
	} else {
		logger.Log.Warn("Object storage not configured - uploads will answer 503")
	}

	// 5b. Setup Malware Scanner (optional)
	var scanner usecase.MalwareScanner
	var scannerPing usecase.Pinger
	if cfg.ClamAVAddr != "" {
		clam := antivirus.NewClamAV(cfg.ClamAVAddr, cfg.ClamAVTimeout)
		scanner = clam
		scannerPing = clam.Ping
	}

	// 6. Setup Realtime
	hub := realtime.NewHub(realtime.NewMemoryRegistry())
	var pusher domain.Pusher = hub
	if cfg.RealtimeBackend == "redis" && redis.Client() != nil {
		broker := realtime.NewRedisBroker(ctx, redis.Client(), hub)
		defer broker.Close()
		go broker.Run(ctx)
		pusher = broker
	}

	// 7. Setup Repositories
	tx := postgres.NewTransactor(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	savedJobRepo := postgres.NewSavedJobRepository(dbPool)
	alertRepo := postgres.NewJobAlertRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	chatRepo := postgres.NewChatRepository(dbPool)
	messageRepo := postgres.NewMessageRepository(dbPool)
	atsRepo := postgres.NewATSRepository(dbPool)
	dashboardRepo := postgres.NewDashboardRepository(dbPool)

	// 8. Setup UseCases
	var redisPing usecase.Pinger
	if client := redis.Client(); client != nil {
		redisPing = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": dbPool.Ping,
		"redis":    redisPing,
		"clamav":   scannerPing,
	})

	notificationUC := usecase.NewNotificationUsecase(notificationRepo, pusher, cfg.NotificationReadTTL)
	authUC := usecase.NewAuthUsecase(userRepo)
	jobUC := usecase.NewJobUsecase(jobRepo, companyRepo, applicationRepo, savedJobRepo, alertRepo, notificationUC, auditLog)
	savedJobUC := usecase.NewSavedJobUsecase(savedJobRepo, alertRepo, jobRepo)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, tx, notificationUC, auditLog)
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, applicationRepo, jobRepo, tx, notificationUC, auditLog)
	atsUC := usecase.NewATSUsecase(atsRepo, jobRepo)
	dashboardUC := usecase.NewDashboardUsecase(dashboardRepo, healthUC, hub)
	chatUC := usecase.NewChatUsecase(chatRepo, messageRepo, userRepo, tx, notificationUC, pusher, auditLog)
	uploadUC := usecase.NewUploadUsecase(objectStore, scanner, userRepo, companyRepo)

	go usecase.RunSweeper(ctx, notificationUC, cfg.NotificationSweepInterval)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		JobUC:          jobUC,
		SavedJobUC:     savedJobUC,
		ApplicationUC:  applicationUC,
		InterviewUC:    interviewUC,
		ATSUC:          atsUC,
		DashboardUC:    dashboardUC,
		NotificationUC: notificationUC,
		ChatUC:         chatUC,
		UploadUC:       uploadUC,
		Health:         healthUC,
		Hub:            hub,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
