package router

import (
	"payvance/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.UserHandler) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/refresh-token", handler.RefreshToken)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users", authRequired)

	users.GET("/profile", handler.GetProfile)
	users.PUT("/profile", handler.UpdateProfile)

	users.GET("/:id", handler.GetUserByID, adminOnly)
	users.PATCH("/:id/block", handler.SetBlocked, adminOnly)
}

func SetupOnboardingRoutes(api *echo.Group, handler *rest.OnboardingHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	onboarding := api.Group("/onboarding", authRequired)

	onboarding.PUT("/step", handler.UpdateStep)
	onboarding.GET("/stats", handler.GetStats, adminOnly)
	onboarding.GET("/time-stats", handler.GetTimeStats, adminOnly)
}

func SetupReferralRoutes(api *echo.Group, handler *rest.ReferralHandler, authRequired echo.MiddlewareFunc) {
	referrals := api.Group("/referrals", authRequired)

	referrals.GET("/code", handler.GetCode)
	referrals.GET("/stats", handler.GetStats)
	referrals.GET("/tree", handler.GetTree)
	referrals.POST("/claim-reward", handler.ClaimReward)
}

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler, authRequired echo.MiddlewareFunc) {
	events := api.Group("/events", authRequired)

	events.POST("/track", handler.Track)
	events.GET("", handler.ListUserEvents)
	events.GET("/stats", handler.GetStats)
}

func SetupNotificationRoutes(api *echo.Group, handler *rest.NotificationHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	notifications := api.Group("/notifications", authRequired)

	notifications.GET("", handler.List)
	notifications.PATCH("/:id/read", handler.MarkRead)

	notifications.POST("/send", handler.Send, adminOnly)
	notifications.POST("/inactivity-nudge/:userId", handler.SendInactivityNudge, adminOnly)
	notifications.POST("/kyc-reminder/:userId", handler.SendKycReminder, adminOnly)
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler, authRequired, marketerOrAdmin echo.MiddlewareFunc) {
	experiments := api.Group("/experiments", authRequired)

	// Only marketers and admins may define experiments; any authenticated
	// user can read them.
	experiments.POST("", handler.Create, marketerOrAdmin)
	experiments.GET("", handler.List)
	experiments.GET("/:id/results", handler.GetResults)
}

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	analytics := api.Group("/analytics", authRequired, adminOnly)

	analytics.GET("/onboarding", handler.Onboarding)
	analytics.GET("/referrals", handler.Referrals)
	analytics.GET("/events", handler.Events)
	analytics.GET("/notifications", handler.Notifications)
	analytics.GET("/retention", handler.Retention)
}
