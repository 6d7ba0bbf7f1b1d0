package handlers

import (
	"net/http"
	"time"

	"github.com/BizOSaaS/brain-go/internal/application/services"
	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandlers contains the dashboard, insight, prediction, and
// export HTTP handlers
type AnalyticsHandlers struct {
	dashboardService *services.DashboardService
	insightService   *services.InsightService
	exportService    *services.ExportService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(
	dashboardService *services.DashboardService,
	insightService *services.InsightService,
	exportService *services.ExportService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		dashboardService: dashboardService,
		insightService:   insightService,
		exportService:    exportService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetDashboard handles GET /api/v1/analytics/dashboard
func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("get_dashboard_request", tenantCtx.TenantID)
	defer marker.Complete()

	tr, err := parseTimeRange(c)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	platforms := parsePlatforms(c.Query("platforms"))
	includePredictions := c.Query("predictions") != "false"

	dashboard, err := h.dashboardService.Build(tenantCtx, platforms, tr, includePredictions)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetDashboard request",
		"duration", time.Since(start), "tenantId", tenantCtx.TenantID, "success", true)

	c.JSON(http.StatusOK, dashboard)
}

// GetPlatformMetrics handles GET /api/v1/analytics/platforms/:platform
func (h *AnalyticsHandlers) GetPlatformMetrics(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_platform_metrics_request", tenantCtx.TenantID)
	defer marker.Complete()

	tr, err := parseTimeRange(c)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	metrics, err := h.dashboardService.PlatformMetricsFor(tenantCtx, analytics.Platform(c.Param("platform")), tr)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, metrics)
}

// GetInsights handles GET /api/v1/analytics/insights - current generation
func (h *AnalyticsHandlers) GetInsights(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_insights_request", tenantCtx.TenantID)
	defer marker.Complete()

	insights, err := h.insightService.Current(tenantCtx)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// GetPredictions handles GET /api/v1/analytics/predictions - entitled tiers only
func (h *AnalyticsHandlers) GetPredictions(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_predictions_request", tenantCtx.TenantID)
	defer marker.Complete()

	tr, err := parseTimeRange(c)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	predictions, err := h.dashboardService.Predictions(tenantCtx, tr)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

// GetExport handles GET /api/v1/analytics/export?format=csv|xlsx|json
func (h *AnalyticsHandlers) GetExport(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("get_export_request", tenantCtx.TenantID)
	defer marker.Complete()

	tr, err := parseTimeRange(c)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	format := analytics.ExportFormat(c.DefaultQuery("format", string(analytics.ExportCSV)))
	platforms := parsePlatforms(c.Query("platforms"))

	export, err := h.exportService.Export(tenantCtx, platforms, tr, format)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetExport request",
		"duration", time.Since(start), "tenantId", tenantCtx.TenantID, "format", format, "success", true)

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
