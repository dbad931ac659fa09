package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/seowliyuan/nutriadmin/models"
	"github.com/seowliyuan/nutriadmin/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionCookie is the admin session cookie. Its value is the identity
// provider's access token, so the session lives exactly as long as the
// underlying credential.
const SessionCookie = "admin_token"

// AdminAuth gates every admin route. The credential comes from the session
// cookie or a bearer header; a missing credential on a browser navigation
// redirects to the login page, while API calls get plain 401/403 JSON.
func AdminAuth(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := utils.ParseAccessToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var profile models.Profile
		if err := db.Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify admin status"})
			return
		}
		if !profile.IsAdmin || profile.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}

		c.Set("adminID", profile.UserID)
		adminName := profile.Email
		if adminName == "" {
			adminName = profile.FullName
		}
		c.Set("adminName", adminName)
		c.Next()
	}
}

// AdminIdentity reads what AdminAuth stored, for the activity logger.
func AdminIdentity(c *gin.Context) (id, name string) {
	id = c.GetString("adminID")
	name = c.GetString("adminName")
	if name == "" {
		name = "System"
	}
	return id, name
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
