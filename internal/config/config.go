package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string
	AppEnv      string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Storage backend: "postgres" or "memory"
	StoreDriver string

	// Notifications
	RedisURL              string
	NotificationTopic     string
	NotificationQueueSize int
	NotificationTimeout   time.Duration

	// Moderation rules
	StrictTransitions  bool
	ReportOverdueAfter time.Duration

	LogRetentionDays int

	// Optional bearer auth for /api/v1
	JWTSecret string

	SentryDSN string
}

func Load() *Config {
	if os.Getenv("APP_ENV") == "development" {
		if err := godotenv.Load(); err != nil {
			slog.Warn("no .env file loaded", "error", err)
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "production"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),

		RedisURL:              getEnv("REDIS_URL", ""),
		NotificationTopic:     getEnv("NOTIFICATION_TOPIC", "ai-notification-topic"),
		NotificationQueueSize: parseInt(getEnv("NOTIFICATION_QUEUE_SIZE", "256"), 256),
		NotificationTimeout:   parseDuration(getEnv("NOTIFICATION_TIMEOUT", "5s"), 5*time.Second),

		StrictTransitions:  parseBool(getEnv("STRICT_TRANSITIONS", "false")),
		ReportOverdueAfter: parseDuration(getEnv("REPORT_OVERDUE_AFTER", "168h"), 168*time.Hour),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		JWTSecret: getEnv("JWT_SECRET", ""),
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// UsesMemoryStore reports whether aggregates live in process memory.
func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == "memory"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
