// Package services contains the stateless application services that
// implement the analytics core's operations. Services are singletons;
// all tenant state arrives through the tenant context parameter.
package services

import (
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// IngestRequest is the write-boundary payload for one data point
type IngestRequest struct {
	Platform   analytics.Platform   `json:"platform"`
	MetricType analytics.MetricType `json:"metricType"`
	MetricName string               `json:"metricName"`
	Value      float64              `json:"value"`
	Dimensions analytics.Dimensions `json:"dimensions,omitempty"`
	RecordedAt *time.Time           `json:"recordedAt,omitempty"`
}

const (
	// Writes dated further back than this belong in an explicit backfill
	backdateWarnThreshold = 24 * time.Hour
	clockSkewTolerance    = time.Minute
)

// IngestionService handles data point recording
type IngestionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	broadcaster messaging.Broadcaster
}

// NewIngestionService creates the ingestion service singleton
func NewIngestionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, broadcaster messaging.Broadcaster) *IngestionService {
	return &IngestionService{
		logger:      logger,
		perfTracker: perfTracker,
		broadcaster: broadcaster,
	}
}

// Record validates and appends one immutable data point. Rejected points
// leave the fact store untouched.
func (s *IngestionService) Record(tenantCtx *tenant.Context, req *IngestRequest) (*analytics.AnalyticsDataPoint, error) {
	marker := s.perfTracker.StartOperation("record_data_point", tenantCtx.TenantID)
	defer marker.Complete()

	now := time.Now().UTC()
	recordedAt := now
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
		if recordedAt.After(now.Add(clockSkewTolerance)) {
			s.logger.Analytics().Warn("Future recordedAt clamped to write time",
				"tenantId", tenantCtx.TenantID, "metricName", req.MetricName, "suppliedAt", recordedAt)
			recordedAt = now
		} else if now.Sub(recordedAt) > backdateWarnThreshold {
			s.logger.Analytics().Warn("Backdated data point accepted",
				"tenantId", tenantCtx.TenantID, "metricName", req.MetricName, "recordedAt", recordedAt)
		}
	}

	point := &analytics.AnalyticsDataPoint{
		ID:         security.GenerateULID(),
		TenantID:   tenantCtx.TenantID,
		Platform:   req.Platform,
		MetricType: req.MetricType,
		MetricName: req.MetricName,
		Value:      req.Value,
		Dimensions: req.Dimensions,
		RecordedAt: recordedAt,
	}

	if err := point.Validate(); err != nil {
		marker.SetError(err)
		s.logger.Analytics().Warn("Data point rejected",
			"tenantId", tenantCtx.TenantID, "platform", req.Platform, "metricName", req.MetricName, "error", err.Error())
		return nil, err
	}

	if err := tenantCtx.DataPointRepo().Store(point); err != nil {
		marker.SetError(err)
		return nil, err
	}

	// Computed views for this tenant are stale as soon as a fact lands.
	tenantCtx.CacheManager.InvalidateAnalytics(tenantCtx.TenantID)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tenantCtx.TenantID, &messaging.LiveEvent{
			Event: "datapoint_recorded",
			Payload: map[string]any{
				"platform":   point.Platform,
				"metricType": point.MetricType,
				"metricName": point.MetricName,
				"value":      point.Value,
				"recordedAt": point.RecordedAt,
			},
		})
	}

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Data point recorded",
		"tenantId", tenantCtx.TenantID, "pointId", point.ID, "platform", point.Platform,
		"metricName", point.MetricName, "duration", marker.Duration)
	return point, nil
}
