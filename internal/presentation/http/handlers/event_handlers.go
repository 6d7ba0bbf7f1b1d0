package handlers

import (
	"net/http"
	"time"

	"github.com/BizOSaaS/brain-go/internal/application/services"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// EventHandlers contains the data point ingestion HTTP handlers
type EventHandlers struct {
	ingestionService *services.IngestionService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(ingestionService *services.IngestionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		ingestionService: ingestionService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// PostDataPoint handles POST /api/v1/events - records one analytics data point
func (h *EventHandlers) PostDataPoint(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_data_point_request", tenantCtx.TenantID)
	defer marker.Complete()

	var req services.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Analytics().Warn("Data point request JSON binding failed",
			"tenantId", tenantCtx.TenantID, "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	point, err := h.ingestionService.Record(tenantCtx, &req)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostDataPoint request",
		"duration", time.Since(start), "tenantId", tenantCtx.TenantID, "success", true)

	c.JSON(http.StatusCreated, gin.H{
		"id":         point.ID,
		"platform":   point.Platform,
		"metricName": point.MetricName,
		"recordedAt": point.RecordedAt,
	})
}

// PostDataPointBatch handles POST /api/v1/events/batch - records multiple points
func (h *EventHandlers) PostDataPointBatch(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_data_point_batch_request", tenantCtx.TenantID)
	defer marker.Complete()

	var reqs []services.IngestRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	// Each point is validated independently; a rejected point does not
	// roll back points already recorded.
	recorded := 0
	var failures []gin.H
	for i := range reqs {
		if _, err := h.ingestionService.Record(tenantCtx, &reqs[i]); err != nil {
			failures = append(failures, gin.H{"index": i, "error": err.Error()})
			continue
		}
		recorded++
	}

	marker.SetSuccess(len(failures) == 0)
	marker.AddMetadata("recorded", recorded)

	status := http.StatusCreated
	if recorded == 0 && len(failures) > 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"recorded": recorded, "failures": failures})
}
