package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GET /admin/analytics?mock=true forces every metric onto its sample data.
func (h *AnalyticsController) Get(c *gin.Context) {
	mock := c.Query("mock") == "true"
	out := h.Svc.Overview(c.Request.Context(), mock)
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": out})
}

func (h *AnalyticsController) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export analytics"})
		return
	}
	filename := fmt.Sprintf("analytics-report-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
