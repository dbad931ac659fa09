package controllers

import (
	"net/http"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/models"
	"github.com/seowliyuan/nutriadmin/services"
	"github.com/seowliyuan/nutriadmin/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// cookieMaxAge is one week; the cookie can never outlive the provider token
// it wraps.
const cookieMaxAge = 7 * 24 * 60 * 60

type AuthController struct {
	DB     *gorm.DB
	Secret string
	Logger *services.ActivityLogger
}

func NewAuthController(db *gorm.DB, secret string, logger *services.ActivityLogger) *AuthController {
	return &AuthController{DB: db, Secret: secret, Logger: logger}
}

type LoginInput struct {
	Token string `json:"token" binding:"required"`
}

// Login validates an identity-provider access token, checks the admin flag
// on the matching profile and issues the session cookie. Non-admins get 403
// and no cookie.
func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	claims, err := utils.ParseAccessToken(h.Secret, input.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
		return
	}
	if !profile.IsAdmin || profile.Disabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: admin privileges required"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	secure := c.Request.TLS != nil
	c.SetCookie(middlewares.SessionCookie, input.Token, cookieMaxAge, "/", "", secure, true)

	h.Logger.Log(c.Request.Context(), "login",
		"Admin logged in: "+claims.Email,
		claims.UserID, claims.Email,
		map[string]any{"user_id": claims.UserID})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": claims.UserID, "email": claims.Email},
	})
}

// Logout clears the session cookie immediately.
func (h *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	secure := c.Request.TLS != nil
	c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
