package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "data/employees.json", cfg.Storage.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Security.RateLimitWindow)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_FILE", "/tmp/staff.json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "/tmp/staff.json", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5, cfg.Security.RateLimitRequests)
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.Address())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, "server port"},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "mongo"}, "unknown storage backend"},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true"}, "JWT secret"},
		{"auth with short secret", map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": "short"}, "JWT secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Name: "staff", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=staff sslmode=disable", db.GetDSN())
}

func TestLoadRedisBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_RETRY_BACKOFF", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, "employeedir", cfg.Redis.KeyPrefix)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.RetryBackoff)
	assert.Equal(t, 5, cfg.Redis.MaxRetries)
}
