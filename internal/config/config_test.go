package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itops-service/internal/config"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "itops-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "itops:events", cfg.Events.ChannelPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL())
	assert.Equal(t, 60, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Notify.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/itops")
	t.Setenv("POSTGRES_MAX_CONNS", "25")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EVENTS_PUBLISH_REDIS", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("NOTIFY_ENABLED", "true")
	t.Setenv("NOTIFY_WEBHOOK_URL", "http://hooks.local/itops")
	t.Setenv("NOTIFY_TIMEOUT_SECONDS", "-1")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Events.PublishToRedis)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Notify.Enabled)
	assert.Equal(t, "http://hooks.local/itops", cfg.Notify.WebhookURL)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without dsn", env: map[string]string{"STORAGE_DRIVER": "postgres", "POSTGRES_DSN": ""}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad redis db", env: map[string]string{"STORAGE_DRIVER": "memory", "REDIS_DB": "x"}},
		{name: "publisher without redis", env: map[string]string{"STORAGE_DRIVER": "memory", "REDIS_ENABLED": "false", "EVENTS_PUBLISH_REDIS": "true"}},
		{name: "idempotency without redis", env: map[string]string{"STORAGE_DRIVER": "memory", "REDIS_ENABLED": "false", "IDEMPOTENCY_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
