package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("CRON_ENABLED", "")
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, "sqlite", env.STORE_BACKEND)
	assert.Equal(t, 24*time.Hour, env.SESSION_TTL)
	assert.True(t, env.CRON_ENABLED)
	assert.Equal(t, "admin", env.ADMIN_USERNAME)
	assert.Equal(t, "admin123", env.ADMIN_PASSWORD)
	assert.Equal(t, "https://api.telegram.org", env.TELEGRAM_API_URL)
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "5001")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CRON_ENABLED", "false")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 5001, env.PORT)
	assert.Equal(t, "redis", env.STORE_BACKEND)
	assert.Equal(t, 90*time.Minute, env.SESSION_TTL)
	assert.False(t, env.CRON_ENABLED)
}

func TestGetRequiresSecretInProduction(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Get()
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	env := &Environment{
		VERCEL_URL:      "preview-123.vercel.app",
		ALLOWED_ORIGINS: " https://admin.pr-study.com ,,http://localhost:3000",
	}

	assert.Equal(t, []string{
		"http://localhost:5173",
		"http://localhost:5001",
		"https://pr-study.com",
		"https://preview-123.vercel.app",
		"https://admin.pr-study.com",
		"http://localhost:3000",
	}, env.Origins())
}
