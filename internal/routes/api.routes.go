package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"botstats/internal/controllers"
)

// RegisterAPIRoutes registers the public surface: ingestion, the
// aggregate snapshot, chart history, health, logs, Prometheus, and the
// live feed.
func RegisterAPIRoutes(r *gin.Engine, stats *controllers.StatsController, history *controllers.HistoryController, ws *controllers.WebSocketController) {
	api := r.Group("/api")
	{
		api.POST("/stats", stats.ReceiveStats)
		api.GET("/stats", stats.GetStats)
		api.GET("/history", history.GetHistory)
		api.GET("/logs", stats.GetLogs)
	}

	r.GET("/health", stats.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", ws.HandleWebSocket)
}
