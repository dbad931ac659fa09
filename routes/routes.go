package routes

import (
	"net/http"
	"time"

	"github.com/seowliyuan/nutriadmin/config"
	"github.com/seowliyuan/nutriadmin/controllers"
	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires services into the HTTP surface. Everything under /admin
// except login/logout sits behind the admin gate.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AdminOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	hub := services.NewFeedHub()
	logger := services.NewActivityLogger(db, hub)
	catalog := services.NewCatalogService(db, cfg.FoodSource)
	directory := services.NewDirectoryService(db, catalog)

	auth := controllers.NewAuthController(db, cfg.JWTSecret, logger)
	foods := controllers.NewFoodController(catalog, logger)
	users := controllers.NewUserController(directory, logger)
	apks := controllers.NewAPKController(services.NewAPKService(db), logger)
	activities := controllers.NewActivityController(logger, hub)
	analytics := controllers.NewAnalyticsController(services.NewAnalyticsService(db))
	dashboard := controllers.NewDashboardController(services.NewDashboardService(db, catalog))
	recognitions := controllers.NewRecognitionController(services.NewRecognitionService(db))
	avatars := controllers.NewAvatarController(services.NewAvatarService(db), logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/admin/login", auth.Login)
	r.POST("/admin/logout", auth.Logout)

	admin := r.Group("/admin")
	admin.Use(middlewares.AdminAuth(db, cfg.JWTSecret))
	{
		admin.GET("/summary", dashboard.Summary)
		admin.GET("/metrics/last7", dashboard.Metrics)
		admin.GET("/user-stats", dashboard.Stats)
		admin.GET("/system-health", dashboard.SystemHealth)

		admin.GET("/users", users.List)
		admin.POST("/users", users.Create)
		admin.GET("/users/:id", users.Get)
		admin.PUT("/users/:id", users.Update)
		admin.DELETE("/users/:id", users.Delete)
		admin.POST("/users/:id/disable", users.Disable)
		admin.POST("/users/:id/enable", users.Enable)
		admin.POST("/users/:id/reset-password", users.ResetPassword)
		admin.GET("/users/:id/activity", users.Activity)
		admin.GET("/users/:id/logs", users.Logs)

		admin.GET("/foods", foods.List)
		admin.POST("/foods", foods.Create)
		admin.GET("/foods/:id", foods.Get)
		admin.PUT("/foods/:id", foods.Update)
		admin.DELETE("/foods/:id", foods.Delete)

		admin.GET("/activity", activities.List)
		admin.POST("/activity", activities.Create)
		admin.GET("/activity/feed", activities.Feed)

		admin.GET("/analytics", analytics.Get)
		admin.GET("/analytics/export", analytics.Export)

		admin.GET("/apks", apks.List)
		admin.POST("/apks", apks.Create)
		admin.DELETE("/apks/:id", apks.Delete)
		admin.POST("/apks/:id/download", apks.Download)
		admin.GET("/apks/:id/qr", apks.QRCode)

		admin.GET("/recognitions", recognitions.List)
		admin.GET("/recognitions/:id", recognitions.Get)

		admin.GET("/avatars", avatars.List)
		admin.POST("/avatars", avatars.Create)
		admin.PUT("/avatars/:id", avatars.Update)
		admin.DELETE("/avatars/:id", avatars.Delete)
		admin.GET("/avatars/:id/purchases", avatars.Purchases)

		// CSV exports live under /export because the router will not accept
		// a static segment alongside the :id wildcard.
		admin.GET("/export/users", users.ExportCSV)
		admin.GET("/export/recognitions", recognitions.ExportCSV)
	}

	return r
}
