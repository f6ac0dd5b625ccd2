package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service configuration, read from the environment.
// Everything has a safe default except AdminPassword and GitHubToken:
// leaving those unset disables the admin surface and the remote backup
// respectively instead of failing startup.
type Config struct {
	Port    int
	DataDir string

	// Remote backup target. Repo is the https URL of the backup
	// repository; Token is injected into it for pushes.
	GitHubRepo   string
	GitHubToken  string
	GitHubBranch string

	AdminPassword string

	// OnlineThreshold is how stale a server's last report may be
	// before it counts as offline. Tuned to the mod's report
	// interval, not to wall-clock comfort.
	OnlineThreshold time.Duration

	// TickInterval drives the scheduler. FlushEveryTicks counts
	// ticks between local flushes; 0 switches to flushing after
	// every report. BackupInterval is the remote backup period.
	TickInterval    time.Duration
	FlushEveryTicks int
	BackupInterval  time.Duration

	// CORSOrigins restricts browser clients; empty allows any
	// origin (the public dashboard is served elsewhere).
	CORSOrigins []string
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Port:            5000,
		DataDir:         "./data",
		GitHubBranch:    "main",
		OnlineThreshold: 8 * time.Second,
		TickInterval:    5 * time.Second,
		FlushEveryTicks: 10,
		BackupInterval:  10 * time.Minute,
	}
}

// Load reads the environment over the defaults.
func Load() *Config {
	cfg := Default()

	cfg.Port = envInt("PORT", cfg.Port)
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.GitHubRepo = os.Getenv("GITHUB_REPO")
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	if v := os.Getenv("GITHUB_BRANCH"); v != "" {
		cfg.GitHubBranch = v
	}
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	cfg.OnlineThreshold = time.Duration(envInt("ONLINE_THRESHOLD_SECONDS", int(cfg.OnlineThreshold/time.Second))) * time.Second
	cfg.TickInterval = time.Duration(envInt("TICK_INTERVAL_SECONDS", int(cfg.TickInterval/time.Second))) * time.Second
	cfg.FlushEveryTicks = envInt("FLUSH_EVERY_TICKS", cfg.FlushEveryTicks)
	cfg.BackupInterval = time.Duration(envInt("BACKUP_INTERVAL_MINUTES", int(cfg.BackupInterval/time.Minute))) * time.Minute

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

// BackupEnabled reports whether the remote backup is configured.
func (c *Config) BackupEnabled() bool {
	return c.GitHubRepo != "" && c.GitHubToken != ""
}

// AdminEnabled reports whether the admin surface is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != ""
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
