package routes

import (
	"github.com/gin-gonic/gin"

	"botstats/internal/controllers"
	"botstats/internal/middleware"
)

// RegisterAdminRoutes registers the management surface. The login
// endpoint sits outside the bearer gate but behind a stricter rate
// limit; everything else requires the shared secret on every call.
func RegisterAdminRoutes(r *gin.Engine, admin *controllers.AdminController, authLimiter *middleware.AuthRateLimiter) {
	r.POST("/api/admin/auth", middleware.AuthRateLimitMiddleware(authLimiter), admin.Authenticate)

	grp := r.Group("/api/admin")
	grp.Use(middleware.AdminAuthMiddleware(admin.Auth, admin.Seclog))
	{
		grp.GET("/servers", admin.ListServers)
		grp.GET("/server/:id", admin.GetServer)
		grp.GET("/server/:id/history", admin.GetServerHistory)
		grp.DELETE("/server/:id", admin.DeleteServer)
		grp.POST("/history/clear", admin.ClearHistory)
		grp.POST("/counters", admin.EditCounters)
		grp.POST("/counters/reset", admin.ResetCounters)
		grp.POST("/backup", admin.ForceBackup)
		grp.GET("/backup/revisions", admin.ListRevisions)
		grp.POST("/backup/restore", admin.RestoreRevision)
		grp.POST("/reload", admin.ReloadRemote)
	}
}
