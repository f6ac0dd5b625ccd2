package services

import (
	"sync"
	"time"

	"botstats/internal/models"
)

// SysInfoCache memoizes the gopsutil readings behind /health. The
// deployment platform polls health aggressively and the readings cost
// syscalls, so fresh values are fetched at most once per TTL.
type SysInfoCache struct {
	mu   sync.Mutex
	dir  string
	info *models.SystemInfo
	at   time.Time
	ttl  time.Duration
}

// NewSysInfoCache returns a cache with the given TTL. Disk usage is
// sampled on dataDir.
func NewSysInfoCache(dataDir string, ttl time.Duration) *SysInfoCache {
	return &SysInfoCache{dir: dataDir, ttl: ttl}
}

// Get returns the cached reading, refreshing it when stale.
func (c *SysInfoCache) Get() *models.SystemInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.info != nil && time.Since(c.at) < c.ttl {
		return c.info
	}
	c.info = CollectSystemInfo(c.dir)
	c.at = time.Now()
	return c.info
}
