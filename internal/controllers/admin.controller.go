package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"botstats/internal/middleware"
	"botstats/internal/services"
)

// Revision listing limits for the admin backup endpoints.
const (
	defaultRevisionLimit = 20
	maxRevisionLimit     = 100
)

// AdminController serves the authenticated management surface: full
// server records, destructive mutations, counter edits, and the backup
// controls.
type AdminController struct {
	State     *services.State
	Scheduler *services.Scheduler
	Backend   services.Backend
	Auth      *services.AdminAuth
	Seclog    *middleware.SecurityLogger
}

// Authenticate verifies the admin password for dashboard login. It
// issues nothing: the password itself is the bearer credential for
// every subsequent admin call.
func (ac *AdminController) Authenticate(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !ac.Auth.Check(body.Password) {
		ac.Seclog.LogFailedAuth(c.ClientIP(), "admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListServers returns every known server, full detail, online first.
func (ac *AdminController) ListServers(c *gin.Context) {
	servers := ac.State.AdminServers()
	c.JSON(http.StatusOK, gin.H{
		"servers": servers,
		"count":   len(servers),
	})
}

// GetServer returns one server's full record.
func (ac *AdminController) GetServer(c *gin.Context) {
	server, ok := ac.State.AdminServer(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}
	c.JSON(http.StatusOK, server)
}

// GetServerHistory returns one server's bot/player time series.
func (ac *AdminController) GetServerHistory(c *gin.Context) {
	history, ok := ac.State.ServerHistorySnapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// DeleteServer removes a server and its history. Its contribution to
// the global counters stays.
func (ac *AdminController) DeleteServer(c *gin.Context) {
	id := c.Param("id")
	if !ac.State.DeleteServer(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}
	log.Printf("[ADMIN] Deleted server %s", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearHistory empties the global and every per-server history ring.
func (ac *AdminController) ClearHistory(c *gin.Context) {
	ac.State.ClearHistory()
	log.Printf("[ADMIN] Cleared all history")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EditCounters overwrites the global lifetime counters. Both fields
// are required so a partial body cannot silently zero one of them.
func (ac *AdminController) EditCounters(c *gin.Context) {
	var body struct {
		TotalSpawned *int64 `json:"total_spawned"`
		TotalKilled  *int64 `json:"total_killed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TotalSpawned == nil || body.TotalKilled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if *body.TotalSpawned < 0 || *body.TotalKilled < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Counters must be non-negative"})
		return
	}

	ac.State.SetCounters(*body.TotalSpawned, *body.TotalKilled)
	log.Printf("[ADMIN] Counters set to spawned=%d killed=%d", *body.TotalSpawned, *body.TotalKilled)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetCounters zeroes the global lifetime counters.
func (ac *AdminController) ResetCounters(c *gin.Context) {
	ac.State.ResetCounters()
	log.Printf("[ADMIN] Counters reset")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ForceBackup triggers a backup outside the schedule. started reports
// whether a new backup began; false means one was already in flight,
// which is success, the data is being persisted either way.
func (ac *AdminController) ForceBackup(c *gin.Context) {
	started := ac.Scheduler.TriggerBackup("forced")
	log.Printf("[ADMIN] Backup forced (started: %v)", started)
	c.JSON(http.StatusOK, gin.H{"success": true, "started": started})
}

// ListRevisions returns recent backup commits, newest first.
func (ac *AdminController) ListRevisions(c *gin.Context) {
	limit := defaultRevisionLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
			return
		}
		limit = n
	}
	if limit > maxRevisionLimit {
		limit = maxRevisionLimit
	}

	revisions, err := ac.Backend.ListRevisions(c.Request.Context(), limit)
	if err != nil {
		ac.backupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revisions": revisions,
		"count":     len(revisions),
	})
}

// RestoreRevision rolls live state back to a specific backup commit.
// The most destructive admin operation: it requires an explicit
// confirmation token in the body.
func (ac *AdminController) RestoreRevision(c *gin.Context) {
	var body struct {
		Revision string `json:"revision"`
		Confirm  string `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Revision == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if body.Confirm != "restore" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation required: set confirm to \"restore\""})
		return
	}

	p, err := ac.Backend.Restore(c.Request.Context(), body.Revision)
	if err != nil {
		ac.backupError(c, err)
		return
	}
	ac.State.RestoreFrom(p)
	log.Printf("[ADMIN] Restored state from revision %s", body.Revision)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReloadRemote throws away local state and reloads the remote branch
// tip, for recovering an instance whose volume was lost or mangled.
func (ac *AdminController) ReloadRemote(c *gin.Context) {
	p, err := ac.Backend.Reload(c.Request.Context())
	if err != nil {
		ac.backupError(c, err)
		return
	}
	ac.State.RestoreFrom(p)
	log.Printf("[ADMIN] Reloaded state from remote")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ac *AdminController) backupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRemoteDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrBackupBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
