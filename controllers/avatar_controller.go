package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type AvatarController struct {
	Svc    *services.AvatarService
	Logger *services.ActivityLogger
}

func NewAvatarController(svc *services.AvatarService, logger *services.ActivityLogger) *AvatarController {
	return &AvatarController{Svc: svc, Logger: logger}
}

// List is always 200: a missing shop table falls back to unlock records,
// and no table at all yields an empty page marked source "none".
func (h *AvatarController) List(c *gin.Context) {
	out := h.Svc.List(c.Request.Context(),
		intQuery(c, "page", 1), intQuery(c, "perPage", 20))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"avatars":    out.Avatars,
		"source":     out.Source,
		"pagination": out.Pagination,
	})
}

func (h *AvatarController) Create(c *gin.Context) {
	var input services.CreateAvatarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing avatar name"})
		return
	}

	avatar, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrShopUnavailable) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "avatars table not found; create an `avatars` table to manage the shop"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "avatar_created",
		`Avatar "`+avatar.Name+`" added to shop`, adminID, adminName,
		map[string]any{"avatar_id": avatar.ID, "avatar_name": avatar.Name})

	c.JSON(http.StatusOK, gin.H{"success": true, "avatar": avatar})
}

func (h *AvatarController) Update(c *gin.Context) {
	id, ok := avatarID(c)
	if !ok {
		return
	}
	var input services.UpdateAvatarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	avatar, err := h.Svc.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrShopUnavailable):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "avatars table not found; cannot update"})
		case errors.Is(err, services.ErrNoUpdatableFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
		case errors.Is(err, services.ErrAvatarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "avatar_updated",
		`Avatar "`+avatar.Name+`" updated`, adminID, adminName,
		map[string]any{"avatar_id": avatar.ID, "avatar_name": avatar.Name})

	c.JSON(http.StatusOK, gin.H{"success": true, "avatar": avatar})
}

func (h *AvatarController) Delete(c *gin.Context) {
	id, ok := avatarID(c)
	if !ok {
		return
	}

	name := strconv.FormatUint(uint64(id), 10)
	if avatar, err := h.Svc.Get(c.Request.Context(), id); err == nil {
		name = avatar.Name
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrShopUnavailable):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "avatars table not found; cannot delete"})
		case errors.Is(err, services.ErrAvatarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "avatar_deleted",
		`Avatar "`+name+`" removed from shop`, adminID, adminName,
		map[string]any{"avatar_id": id, "avatar_name": name})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Purchases accepts a shop id or, when the shop table is absent, a raw
// avatar name.
func (h *AvatarController) Purchases(c *gin.Context) {
	purchases, source := h.Svc.Purchases(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "purchases": purchases, "source": source})
}

func avatarID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
