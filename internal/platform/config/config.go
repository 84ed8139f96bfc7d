package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	KafkaBrokers    string
	JWTSigningKey   string
	NotificationTTL time.Duration
	AuditBuffer     int
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	addr := os.Getenv("FONCIER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	notificationTTL := 30 * 24 * time.Hour
	if raw := os.Getenv("NOTIFICATION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			notificationTTL = time.Duration(hours) * time.Hour
		}
	}

	auditBuffer := 256
	if raw := os.Getenv("AUDIT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			auditBuffer = n
		}
	}

	return Config{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		JWTSigningKey:   jwtSigningKey,
		NotificationTTL: notificationTTL,
		AuditBuffer:     auditBuffer,
	}
}
