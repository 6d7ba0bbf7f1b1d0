// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/BizOSaaS/brain-go/internal/application/container"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/handlers"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	eventHandlers := handlers.NewEventHandlers(container.IngestionService, container.Logger, container.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(
		container.DashboardService,
		container.InsightService,
		container.ExportService,
		container.Logger,
		container.PerfTracker,
	)
	adminHandlers := handlers.NewAdminHandlers(
		container.AggregationService,
		container.InsightService,
		container.RetentionService,
		container.Logger,
		container.PerfTracker,
	)
	tenantHandlers := handlers.NewTenantHandlers(container.RegistrationService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.Broadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.TenantManager)

	// Public, non-tenant-specific routes for provisioning and liveness.
	r.GET("/api/v1/health", healthHandlers.GetHealth)
	r.POST("/api/v1/tenant/register", tenantHandlers.PostRegister)

	// API routes with tenant middleware
	api := r.Group("/api/v1")
	api.Use(middleware.TenantMiddleware(container.TenantManager, container.PerfTracker))
	api.Use(middleware.DomainValidationMiddleware(container.TenantManager))
	{
		// Authentication
		api.POST("/auth/login", tenantHandlers.PostLogin)

		// Tenant-scoped health
		api.GET("/health/tenant", healthHandlers.GetTenantStatus)

		// Ingestion endpoints
		events := api.Group("/events")
		events.Use(middleware.AuthMiddleware(container.Logger))
		{
			events.POST("", eventHandlers.PostDataPoint)
			events.POST("/batch", eventHandlers.PostDataPointBatch)
		}

		// Analytics endpoints
		analytics := api.Group("/analytics")
		analytics.Use(middleware.AuthMiddleware(container.Logger))
		{
			analytics.GET("/dashboard", analyticsHandlers.GetDashboard)
			analytics.GET("/platforms/:platform", analyticsHandlers.GetPlatformMetrics)
			analytics.GET("/insights", analyticsHandlers.GetInsights)
			analytics.GET("/predictions", analyticsHandlers.GetPredictions)
			analytics.GET("/export", analyticsHandlers.GetExport)
		}

		// Live feed: browsers can't set custom headers on WebSocket
		// upgrades, so the handler validates a token query param with
		// the same tenant cross-check AuthMiddleware applies.
		api.GET("/live", liveHandlers.GetLiveFeed)
		api.GET("/live/status", liveHandlers.GetLiveStatus)

		// Admin endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(container.Logger))
		admin.Use(middleware.AdminOnlyMiddleware())
		{
			admin.POST("/aggregate", adminHandlers.PostAggregate)
			admin.POST("/backfill", adminHandlers.PostBackfill)
			admin.POST("/insights/generate", adminHandlers.PostGenerateInsights)
			admin.POST("/retention/cleanup", adminHandlers.PostRetentionCleanup)
		}
	}

	return r
}
