package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                 string
	DatabaseURL          string
	JWTSecret            string
	JWTIssuer            string
	TokenTTLHours        int
	BcryptCost           int
	CorsOrigins          []string
	UploadBackend        string
	UploadDir            string
	UploadURLPrefix      string
	UploadMaxBytes       int64
	S3Bucket             string
	S3PublicBaseURL      string
	MetricsDiskPath      string
	MetricsSampleSeconds int
	LogLevel             string
	LogFormat            string
	LogDir               string
	LogRetentionDays     int
}

func Load() Config {
	return Config{
		Port:                 envOr("PORT", "8080"),
		DatabaseURL:          databaseURL(),
		JWTSecret:            mustEnv("JWT_SECRET"),
		JWTIssuer:            envOr("JWT_ISSUER", "portfolio"),
		TokenTTLHours:        envOrInt("TOKEN_TTL_HOURS", 24),
		BcryptCost:           envOrInt("BCRYPT_COST", 10),
		CorsOrigins:          parseCSV(envOr("CORS_ORIGINS", "")),
		UploadBackend:        strings.ToLower(envOr("UPLOAD_BACKEND", "local")),
		UploadDir:            envOr("UPLOAD_DIR", "uploads"),
		UploadURLPrefix:      envOr("UPLOAD_URL_PREFIX", "/uploads"),
		UploadMaxBytes:       int64(envOrInt("UPLOAD_MAX_BYTES", 5<<20)),
		S3Bucket:             envOr("S3_BUCKET", ""),
		S3PublicBaseURL:      strings.TrimRight(envOr("S3_PUBLIC_BASE_URL", ""), "/"),
		MetricsDiskPath:      envOr("METRICS_DISK_PATH", "/"),
		MetricsSampleSeconds: envOrInt("METRICS_SAMPLE_INTERVAL", 5),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LogFormat:            envOr("LOG_FORMAT", "json"),
		LogDir:               envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:     envOrInt("LOG_RETENTION_DAYS", 7),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if value := envOr("DATABASE_URL", ""); value != "" {
		return value
	}
	user := mustEnv("DB_USER")
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	name := mustEnv("DB_DATABASE")
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, os.Getenv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=" + envOr("DB_SSLMODE", "disable"),
	}
	return dsn.String()
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
