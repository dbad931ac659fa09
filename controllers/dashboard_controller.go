package controllers

import (
	"net/http"

	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Svc *services.DashboardService
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{Svc: svc}
}

func (h *DashboardController) Summary(c *gin.Context) {
	out := h.Svc.Summary(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": out})
}

func (h *DashboardController) Metrics(c *gin.Context) {
	out := h.Svc.MetricsLast7(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": out})
}

func (h *DashboardController) Stats(c *gin.Context) {
	out, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": out})
}

func (h *DashboardController) SystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "health": h.Svc.Health()})
}
