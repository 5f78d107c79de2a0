package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Site.Addr)
	assert.Equal(t, "Europe/Oslo", cfg.Site.TimeZone)
	assert.Equal(t, BackendSurreal, cfg.Content.Connection.Backend)
	assert.True(t, cfg.Content.Connection.IsPlaceholder())
	assert.Equal(t, "https://anchor.fm/s/f7a13dec/podcast/rss", cfg.Podcast.FeedURL)
	assert.Equal(t, 10*time.Minute, cfg.Podcast.CacheTTL)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
site:
  addr: ":9000"
content:
  connection:
    backend: memory
kafka:
  seeds: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("HKM_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Site.Addr)
	assert.Equal(t, BackendMemory, cfg.Content.Connection.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
