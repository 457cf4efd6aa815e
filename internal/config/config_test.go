package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/site")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.TokenTTLHours)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "local", cfg.UploadBackend)
	assert.Equal(t, "/uploads", cfg.UploadURLPrefix)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/site", cfg.DatabaseURL)
}

func TestLoadComposesDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "site")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_DATABASE", "portfolio")

	cfg := Load()
	assert.Equal(t, "postgres://site:p%40ss@db:6543/portfolio?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/x")
	require.Panics(t, func() { Load() })
}

func TestEnvOrIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "soon")
	assert.Equal(t, 24, envOrInt("TOKEN_TTL_HOURS", 24))
}
