package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.IsDebug())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "jwt", cfg.JWT.CookieName)
	assert.Equal(t, 15*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "dev-secret", cfg.JWT.Secret)
	assert.Equal(t, "social.notifications", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Media.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOCIAL_SERVER_MODE", "release")
	t.Setenv("SOCIAL_JWT_SECRET", "prod-secret")
	t.Setenv("SOCIAL_DATABASE_DRIVER", "postgres")
	t.Setenv("SOCIAL_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SOCIAL_MEDIA_BUCKET", "avatars")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDebug())
	assert.Equal(t, "prod-secret", cfg.JWT.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Media.Enabled())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte("server:\n  port: 9090\nredis:\n  addr: localhost:6380\n  ttl: 30s\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Validation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOCIAL_SERVER_MODE", "release")

	_, err := Load()
	require.Error(t, err, "secret is required outside debug mode")

	t.Setenv("SOCIAL_JWT_SECRET", "x")
	t.Setenv("SOCIAL_DATABASE_DRIVER", "mysql")
	_, err = Load()
	require.Error(t, err)
}
