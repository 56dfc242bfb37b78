// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/container"
	"github.com/pulsedeskhq/pulsedesk-go/internal/presentation/http/handlers"
	"github.com/pulsedeskhq/pulsedesk-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.AnalysisService, container.Logger, container.PerfTracker)
	runHandlers := handlers.NewRunHandlers(container.AnalysisService, container.RunBroadcaster, container.Logger)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	digestHandlers := handlers.NewDigestHandlers(container.DigestService, container.AnalysisService, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.AnalysisService, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		// Public auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/logout", authHandlers.PostLogout)
			auth.GET("/status", authHandlers.GetAuthStatus)
		}

		// Analysis routes require an admin session
		analysis := api.Group("/analysis")
		analysis.Use(middleware.AdminAuthMiddleware(container.AuthService))
		{
			analysis.POST("/run", analyticsHandlers.PostRun)
			analysis.GET("/profiles", analyticsHandlers.GetProfiles)
			analysis.GET("/organisations", analyticsHandlers.GetOrganisations)
			analysis.GET("/engagement", analyticsHandlers.GetEngagement)
			analysis.GET("/cohorts", analyticsHandlers.GetCohorts)
			analysis.GET("/matrix", analyticsHandlers.GetMatrix)
			analysis.GET("/all", analyticsHandlers.GetAll)
		}

		// Run history and the live run-status stream
		api.GET("/runs", runHandlers.GetRuns)
		api.GET("/runs/stream", runHandlers.StreamRunStatus)

		// Digest and operational endpoints require an admin session
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(container.AuthService))
		{
			admin.POST("/digest/send", digestHandlers.PostSendDigest)
			admin.GET("/performance", healthHandlers.GetPerformance)
			admin.GET("/runs/:id/metrics", healthHandlers.GetRunMetrics)
			admin.GET("/logs/levels", healthHandlers.GetLogLevels)
			admin.POST("/logs/levels", healthHandlers.SetLogLevel)
		}
	}

	return r
}
