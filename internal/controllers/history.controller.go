package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"botstats/internal/services"
)

// HistoryController serves the chart history consumed by the public
// dashboard.
type HistoryController struct {
	State *services.State
}

// GetHistory returns the global history rings as the dashboard wire
// object: parallel timestamp/servers/bots/spawned/killed arrays.
func (hc *HistoryController) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, hc.State.GlobalHistorySnapshot())
}
