package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc    *services.DirectoryService
	Logger *services.ActivityLogger
}

func NewUserController(svc *services.DirectoryService, logger *services.ActivityLogger) *UserController {
	return &UserController{Svc: svc, Logger: logger}
}

// GET /admin/users?page=&perPage=&q=&goal=&sortBy=&sortOrder=
func (h *UserController) List(c *gin.Context) {
	q := services.ProfileQuery{
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "perPage", 20),
		Text:    c.Query("q"),
		Goal:    c.Query("goal"),
		SortBy:  c.DefaultQuery("sortBy", "created_at"),
		Desc:    c.DefaultQuery("sortOrder", "desc") != "asc",
	}
	users, pagination, err := h.Svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "pagination": pagination})
}

func (h *UserController) Get(c *gin.Context) {
	user, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserController) Create(c *gin.Context) {
	var input services.CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "user_created",
		fmt.Sprintf("User %s created", displayName(user.FullName, user.Email, user.UserID)),
		adminID, adminName,
		map[string]any{"user_id": user.UserID, "email": user.Email})

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserController) Update(c *gin.Context) {
	id := c.Param("id")
	var input services.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	user, err := h.Svc.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoUpdatableFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
		case errors.Is(err, services.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "user_updated",
		fmt.Sprintf("User %s updated", displayName(user.FullName, user.Email, user.UserID)),
		adminID, adminName,
		map[string]any{"user_id": id, "updated_fields": input.UpdatedFields()})

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserController) Delete(c *gin.Context) {
	id := c.Param("id")

	name := id
	if user, err := h.Svc.Get(c.Request.Context(), id); err == nil {
		name = displayName(user.FullName, user.Email, user.UserID)
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "user_deleted",
		fmt.Sprintf("User %s deleted", name), adminID, adminName,
		map[string]any{"user_id": id})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserController) Disable(c *gin.Context) { h.setDisabled(c, true) }
func (h *UserController) Enable(c *gin.Context)  { h.setDisabled(c, false) }

func (h *UserController) setDisabled(c *gin.Context, disabled bool) {
	id := c.Param("id")
	user, err := h.Svc.SetDisabled(c.Request.Context(), id, disabled)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, verb := "user_enabled", "enabled"
	if disabled {
		action, verb = "user_disabled", "disabled"
	}
	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), action,
		fmt.Sprintf("User %s %s", displayName(user.FullName, user.Email, user.UserID), verb),
		adminID, adminName,
		map[string]any{"user_id": id})

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserController) ResetPassword(c *gin.Context) {
	user, err := h.Svc.RequestPasswordReset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset requested", "user": user})
}

func (h *UserController) Activity(c *gin.Context) {
	out := h.Svc.Activity(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"streak":             out.Streak,
		"points":             out.Points,
		"total_scans":        out.TotalScans,
		"total_foods_logged": out.TotalFoodsLogged,
	})
}

func (h *UserController) Logs(c *gin.Context) {
	logs, recognitions := h.Svc.RecentLogs(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs, "recognitions": recognitions})
}

// ExportCSV serves the filtered directory as a CSV attachment. The export is
// buffered so a failing query yields a JSON error instead of a truncated file.
func (h *UserController) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(c.Request.Context(), &buf, c.Query("q"), c.Query("goal")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
		return
	}
	filename := fmt.Sprintf("users-export-%d.csv", time.Now().Unix())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func displayName(candidates ...string) string {
	for _, v := range candidates {
		if v != "" {
			return v
		}
	}
	return "unknown"
}
