package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botstats/internal/config"
)

// clearEnv blanks every variable Load reads so tests see the defaults
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATA_DIR",
		"GITHUB_REPO", "GITHUB_TOKEN", "GITHUB_BRANCH",
		"ADMIN_PASSWORD",
		"ONLINE_THRESHOLD_SECONDS", "TICK_INTERVAL_SECONDS",
		"FLUSH_EVERY_TICKS", "BACKUP_INTERVAL_MINUTES",
		"CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "main", cfg.GitHubBranch)
	assert.Equal(t, 8*time.Second, cfg.OnlineThreshold)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 10, cfg.FlushEveryTicks)
	assert.Equal(t, 10*time.Minute, cfg.BackupInterval)
	assert.Empty(t, cfg.CORSOrigins)
	assert.False(t, cfg.BackupEnabled())
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_DIR", "/var/lib/botstats")
	t.Setenv("GITHUB_REPO", "https://github.com/example/backup.git")
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_BRANCH", "backup")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("ONLINE_THRESHOLD_SECONDS", "15")
	t.Setenv("TICK_INTERVAL_SECONDS", "2")
	t.Setenv("FLUSH_EVERY_TICKS", "0")
	t.Setenv("BACKUP_INTERVAL_MINUTES", "30")
	t.Setenv("CORS_ORIGINS", "https://dash.example.com, https://other.example.com,")

	cfg := config.Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/var/lib/botstats", cfg.DataDir)
	assert.Equal(t, "backup", cfg.GitHubBranch)
	assert.Equal(t, 15*time.Second, cfg.OnlineThreshold)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 0, cfg.FlushEveryTicks)
	assert.Equal(t, 30*time.Minute, cfg.BackupInterval)
	require.Len(t, cfg.CORSOrigins, 2)
	assert.Equal(t, "https://dash.example.com", cfg.CORSOrigins[0])
	assert.True(t, cfg.BackupEnabled())
	assert.True(t, cfg.AdminEnabled())
}

func TestLoadBadNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("FLUSH_EVERY_TICKS", "ten")

	cfg := config.Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 10, cfg.FlushEveryTicks)
}

func TestBackupNeedsRepoAndToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_REPO", "https://github.com/example/backup.git")

	cfg := config.Load()
	assert.False(t, cfg.BackupEnabled())

	t.Setenv("GITHUB_TOKEN", "tok")
	cfg = config.Load()
	assert.True(t, cfg.BackupEnabled())
}
