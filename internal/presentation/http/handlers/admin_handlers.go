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

// AdminHandlers contains the operational HTTP handlers behind admin auth
type AdminHandlers struct {
	aggregationService *services.AggregationService
	insightService     *services.InsightService
	retentionService   *services.RetentionService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(
	aggregationService *services.AggregationService,
	insightService *services.InsightService,
	retentionService *services.RetentionService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AdminHandlers {
	return &AdminHandlers{
		aggregationService: aggregationService,
		insightService:     insightService,
		retentionService:   retentionService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// PostAggregate handles POST /api/v1/admin/aggregate - on-demand daily rollup
func (h *AdminHandlers) PostAggregate(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_aggregate_request", tenantCtx.TenantID)
	defer marker.Complete()

	var req struct {
		Date string `json:"date"` // defaults to yesterday
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	day := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(analytics.PeriodDateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	total, err := h.aggregationService.AggregateTenantDay(tenantCtx, day)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"periodDate": analytics.PeriodKey(day), "metrics": total})
}

// PostBackfill handles POST /api/v1/admin/backfill - acknowledged recompute
// over a date range for one platform
func (h *AdminHandlers) PostBackfill(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_backfill_request", tenantCtx.TenantID)
	defer marker.Complete()

	var req struct {
		Platform string `json:"platform" binding:"required"`
		From     string `json:"from" binding:"required"`
		To       string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform, from, and to are required"})
		return
	}

	from, err := time.Parse(analytics.PeriodDateLayout, req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(analytics.PeriodDateLayout, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	tr := analytics.TimeRange{Start: from, End: to.AddDate(0, 0, 1)}
	total, err := h.aggregationService.Backfill(tenantCtx, analytics.Platform(req.Platform), tr)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"platform": req.Platform, "from": req.From, "to": req.To, "metrics": total})
}

// PostGenerateInsights handles POST /api/v1/admin/insights/generate
func (h *AdminHandlers) PostGenerateInsights(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_generate_insights_request", tenantCtx.TenantID)
	defer marker.Complete()

	tr, err := parseTimeRange(c)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	insights, err := h.insightService.Generate(tenantCtx, tr)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// PostRetentionCleanup handles POST /api/v1/admin/retention/cleanup
func (h *AdminHandlers) PostRetentionCleanup(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_retention_cleanup_request", tenantCtx.TenantID)
	defer marker.Complete()

	result, err := h.retentionService.Cleanup(tenantCtx)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, result)
}
