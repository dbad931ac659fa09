package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

type APKController struct {
	Svc    *services.APKService
	Logger *services.ActivityLogger
}

func NewAPKController(svc *services.APKService, logger *services.ActivityLogger) *APKController {
	return &APKController{Svc: svc, Logger: logger}
}

func (h *APKController) List(c *gin.Context) {
	versions, pagination := h.Svc.List(c.Request.Context(),
		intQuery(c, "page", 1), intQuery(c, "perPage", 10))
	c.JSON(http.StatusOK, gin.H{"success": true, "versions": versions, "pagination": pagination})
}

func (h *APKController) Create(c *gin.Context) {
	var input services.CreateAPKInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Version and github_url are required"})
		return
	}

	apk, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "apk_uploaded",
		"APK version "+apk.Version+" published", adminID, adminName,
		map[string]any{"version": apk.Version, "github_url": apk.GithubURL})

	c.JSON(http.StatusOK, gin.H{"success": true, "version": apk})
}

func (h *APKController) Delete(c *gin.Context) {
	id, ok := apkID(c)
	if !ok {
		return
	}

	version := strconv.FormatUint(uint64(id), 10)
	if apk, err := h.Svc.Get(c.Request.Context(), id); err == nil {
		version = apk.Version
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrAPKNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "APK version not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "apk_deleted",
		"APK version "+version+" removed", adminID, adminName,
		map[string]any{"version": version})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Download bumps the counter and hands back the hosted binary's URL; the
// dashboard performs the actual navigation.
func (h *APKController) Download(c *gin.Context) {
	id, ok := apkID(c)
	if !ok {
		return
	}
	url, err := h.Svc.TrackDownload(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAPKNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "APK version not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// QRCode renders the download link as a PNG for the releases screen.
func (h *APKController) QRCode(c *gin.Context) {
	id, ok := apkID(c)
	if !ok {
		return
	}
	apk, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAPKNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "APK version not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	png, err := qrcode.Encode(apk.GithubURL, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func apkID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
