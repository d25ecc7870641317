package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	DBUrl       string
	JWTSecret   string
	FrontendURL string
	// CORS
	CORSAllowedOrigins []string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Realtime Configuration ("memory" or "redis")
	RealtimeBackend string
	// Object storage (S3 compatible)
	S3Provider      string
	S3Region        string
	S3Bucket        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string
	// Notifications
	NotificationReadTTL       time.Duration
	NotificationSweepInterval time.Duration
	// Rate Limiting Configuration
	RateLimitRPS         float64
	RateLimitBurst       int
	RateLimitWindow      time.Duration
	RateLimitPerWindow   int
	RateLimitIPPerWindow int
	UploadLimitPerMinute int
	UploadLimitPerDay    int
	// Audit
	AuditLogEnabled bool
	// Malware scanning of uploads; empty disables it
	ClamAVAddr    string
	ClamAVTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environments inject variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// CORS
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Realtime
		RealtimeBackend: strings.ToLower(getEnv("REALTIME_BACKEND", "memory")),
		// Object storage
		S3Provider:      getEnv("S3_PROVIDER", "aws"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Endpoint:      strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		// Notifications
		NotificationReadTTL:       getEnvDuration("NOTIFICATION_READ_TTL", 30*24*time.Hour),
		NotificationSweepInterval: getEnvDuration("NOTIFICATION_SWEEP_INTERVAL", time.Hour),
		// Rate limiting
		RateLimitRPS:         getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitWindow:      getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitPerWindow:   getEnvInt("RATE_LIMIT_PER_WINDOW", 300),
		RateLimitIPPerWindow: getEnvInt("RATE_LIMIT_IP_PER_WINDOW", 1200),
		UploadLimitPerMinute: getEnvInt("UPLOAD_LIMIT_PER_MINUTE", 10),
		UploadLimitPerDay:    getEnvInt("UPLOAD_LIMIT_PER_DAY", 50),
		// Audit
		AuditLogEnabled: getEnvBool("AUDIT_LOG_ENABLED", true),
		// Antivirus
		ClamAVAddr:    getEnv("CLAMAV_ADDR", ""),
		ClamAVTimeout: getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Every authenticated request will be rejected.")
	}
	if cfg.RealtimeBackend == "redis" && cfg.RedisURL == "" {
		log.Println("WARNING: REALTIME_BACKEND=redis but REDIS_URL not configured. Falling back to in-process delivery.")
		cfg.RealtimeBackend = "memory"
	}

	return cfg, nil
}

// StorageConfigured reports whether uploads can reach object storage.
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("720h", "15m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimRight(strings.TrimSpace(item), "/"); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
