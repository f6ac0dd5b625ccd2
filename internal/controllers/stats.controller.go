package controllers

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"botstats/internal/models"
	"botstats/internal/services"
)

// Log line limits for /api/logs.
const (
	defaultLogLines = 100
	maxLogLines     = 500
)

// StatsController serves the public surface: report ingestion, the
// aggregate snapshot, health, and recent logs.
type StatsController struct {
	State     *services.State
	Scheduler *services.Scheduler
	Backend   services.Backend
	Metrics   *services.Metrics
	Logs      *services.LogBuffer
	SysInfo   *services.SysInfoCache

	// FlushOnReport mirrors the original save-on-every-report mode.
	FlushOnReport bool

	InstanceID string
	StartedAt  time.Time
}

// ReceiveStats ingests one agent report. The only hard requirement on
// the body is a server_id; everything else defaults.
func (sc *StatsController) ReceiveStats(c *gin.Context) {
	var report models.StatsReport
	if err := c.ShouldBindJSON(&report); err != nil || report.ServerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	sc.State.ApplyReport(&report)
	sc.Metrics.ReportReceived()
	if sc.FlushOnReport {
		sc.Scheduler.FlushNow()
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStats returns the public aggregate snapshot.
func (sc *StatsController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, sc.State.BuildSnapshot())
}

// Health reports liveness plus enough operational detail to triage a
// sick deployment from the platform dashboard alone.
func (sc *StatsController) Health(c *gin.Context) {
	snap := sc.State.BuildSnapshot()
	backup := sc.Backend.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"data_points":    sc.State.HistoryPoints(),
		"servers":        sc.State.ServerCount(),
		"servers_online": snap.ServersOnline,
		"total_spawned":  snap.BotsSpawnedTotal,
		"total_killed":   snap.BotsKilledTotal,
		"backup_enabled": backup.Enabled,
		"last_backup":    backup,
		"uptime_seconds": int64(time.Since(sc.StartedAt).Seconds()),
		"system":         sc.SysInfo.Get(),
		"instance_id":    sc.InstanceID,
		"goroutines":     runtime.NumGoroutine(),
	})
}

// GetLogs returns the most recent log lines, newest last.
func (sc *StatsController) GetLogs(c *gin.Context) {
	lines := defaultLogLines
	if v := c.Query("lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
			return
		}
		lines = n
	}
	if lines > maxLogLines {
		lines = maxLogLines
	}

	out := sc.Logs.Lines(lines)
	c.JSON(http.StatusOK, gin.H{
		"lines": out,
		"count": len(out),
	})
}
