package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type RecognitionController struct {
	Svc *services.RecognitionService
}

func NewRecognitionController(svc *services.RecognitionService) *RecognitionController {
	return &RecognitionController{Svc: svc}
}

func recognitionQuery(c *gin.Context) services.RecognitionQuery {
	q := services.RecognitionQuery{
		Page:      intQuery(c, "page", 1),
		PerPage:   intQuery(c, "perPage", 20),
		Text:      c.Query("q"),
		UserID:    c.Query("userId"),
		Source:    c.Query("source"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if raw := c.Query("minConfidence"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MinConfidence = &v
		}
	}
	return q
}

func (h *RecognitionController) List(c *gin.Context) {
	out := h.Svc.List(c.Request.Context(), recognitionQuery(c))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"logs":       out.Logs,
		"source":     out.Source,
		"pagination": out.Pagination,
	})
}

func (h *RecognitionController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	rec, err := h.Svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrRecognitionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recognition not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log": rec})
}

func (h *RecognitionController) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(c.Request.Context(), &buf,
		recognitionQuery(c), intQuery(c, "limit", 1000)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export recognition logs"})
		return
	}
	filename := fmt.Sprintf("recognitions-export-%d.csv", time.Now().Unix())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
