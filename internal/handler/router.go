package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"referral-server/internal/config"
	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/service"
)

// SetupRouter wires all routes and middleware onto the engine
func SetupRouter(r *gin.Engine) {
	cfg := config.Get()

	corsConfig := cors.DefaultConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())

	if cfg.Security.EnableSecurityHeaders {
		r.Use(middleware.SecurityHeadersMiddleware())
	}

	limiter := middleware.NewRateLimiter(100, time.Minute)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	exportLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "referral-server"})
	})

	lifecycle := service.NewLifecycleService(model.DB, service.NewNotifier())

	authHandler := NewAuthHandler()
	userHandler := NewUserHandler()
	orgHandler := NewOrganizationHandler()
	roleHandler := NewRoleHandler()
	referralHandler := NewReferralHandler(lifecycle)
	caseHandler := NewCaseHandler(lifecycle)
	notificationHandler := NewNotificationHandler()
	statsHandler := NewStatisticsHandler()
	exportHandler := NewExportHandler()
	auditHandler := NewAuditHandler()
	webhookHandler := NewWebhookHandler()

	// public routes, login gets the strict limiter
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(authLimiter))
	{
		auth.POST("/login", authHandler.Login)
	}

	// authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.Use(middleware.AuditMiddleware())
	{
		authed.GET("/auth/profile", authHandler.GetProfile)
		authed.POST("/auth/change-password", authHandler.ChangePassword)

		referrals := authed.Group("/referrals")
		referrals.Use(middleware.PermissionMiddleware("referral:read"))
		{
			referrals.GET("", referralHandler.List)
			referrals.GET("/:id", referralHandler.Get)
			referrals.POST("", middleware.PermissionMiddleware("referral:create"), referralHandler.Create)
			referrals.PUT("/:id", referralHandler.Update)
			referrals.DELETE("/:id", referralHandler.Delete)
			referrals.POST("/:id/approve", referralHandler.Approve)
			referrals.POST("/:id/reject", referralHandler.Reject)
			referrals.POST("/:id/assign", referralHandler.Assign)
		}

		cases := authed.Group("/cases")
		{
			cases.GET("", caseHandler.ListMine)
			cases.POST("/:id/status", caseHandler.UpdateStatus)
			cases.GET("/:id/history", caseHandler.History)
		}

		authed.GET("/users/supervisors", userHandler.ListSupervisors)

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		}

		authed.GET("/organizations", middleware.PermissionMiddleware("org:read"), orgHandler.List)

		export := authed.Group("/export")
		export.Use(middleware.PermissionMiddleware("export:read"))
		export.Use(middleware.RateLimitMiddleware(exportLimiter))
		{
			export.GET("/referrals/csv", exportHandler.ExportReferralsCSV)
			export.GET("/referrals/xlsx", exportHandler.ExportReferralsXLSX)
			export.GET("/cases/csv", exportHandler.ExportCasesCSV)
			export.GET("/audit-logs/csv", exportHandler.ExportAuditLogsCSV)
		}
	}

	// administrator routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.Use(middleware.AuditMiddleware())
	{
		users := admin.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}

		orgs := admin.Group("/organizations")
		{
			orgs.GET("", orgHandler.List)
			orgs.GET("/:id", orgHandler.Get)
			orgs.POST("", orgHandler.Create)
			orgs.PUT("/:id", orgHandler.Update)
			orgs.DELETE("/:id", orgHandler.Delete)
		}

		roles := admin.Group("/roles")
		{
			roles.GET("", roleHandler.List)
			roles.POST("", roleHandler.Create)
			roles.PUT("/:id", roleHandler.Update)
			roles.DELETE("/:id", roleHandler.Delete)
		}

		stats := admin.Group("/statistics")
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/by-organization", statsHandler.ByOrganization)
			stats.GET("/trend", statsHandler.ReferralTrend)
		}

		admin.GET("/audit-logs", auditHandler.List)

		webhooks := admin.Group("/webhooks")
		{
			webhooks.GET("", webhookHandler.List)
			webhooks.POST("", webhookHandler.Create)
			webhooks.PUT("/:id", webhookHandler.Update)
			webhooks.POST("/:id/toggle", webhookHandler.Toggle)
			webhooks.DELETE("/:id", webhookHandler.Delete)
			webhooks.GET("/:id/logs", webhookHandler.Logs)
		}
	}
}
