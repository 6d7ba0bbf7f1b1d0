package services

import (
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// RetentionService prunes facts and aggregates past the tenant's retention
// horizon. This is the only bulk-delete path in the system.
type RetentionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewRetentionService creates the retention service singleton
func NewRetentionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RetentionService {
	return &RetentionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// RetentionResult reports what one cleanup run removed
type RetentionResult struct {
	TenantID          string    `json:"tenantId"`
	Cutoff            time.Time `json:"cutoff"`
	DataPointsRemoved int64     `json:"dataPointsRemoved"`
	AggregatesRemoved int64     `json:"aggregatesRemoved"`
}

// Cleanup removes rows older than the tenant's configured retention window.
func (s *RetentionService) Cleanup(tenantCtx *tenant.Context) (*RetentionResult, error) {
	marker := s.perfTracker.StartOperation("retention_cleanup", tenantCtx.TenantID)
	defer marker.Complete()

	retentionDays := tenantCtx.Config.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	pointsRemoved, err := tenantCtx.DataPointRepo().DeleteOlderThan(tenantCtx.TenantID, cutoff)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	aggregatesRemoved, err := tenantCtx.AggregateRepo().DeleteOlderThan(tenantCtx.TenantID, analytics.PeriodKey(cutoff))
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	if pointsRemoved > 0 || aggregatesRemoved > 0 {
		tenantCtx.CacheManager.InvalidateAnalytics(tenantCtx.TenantID)
	}

	marker.SetSuccess(true)
	s.logger.Scheduler().Info("Retention cleanup completed",
		"tenantId", tenantCtx.TenantID, "retentionDays", retentionDays,
		"dataPoints", pointsRemoved, "aggregates", aggregatesRemoved, "duration", marker.Duration)

	return &RetentionResult{
		TenantID:          tenantCtx.TenantID,
		Cutoff:            cutoff,
		DataPointsRemoved: pointsRemoved,
		AggregatesRemoved: aggregatesRemoved,
	}, nil
}
