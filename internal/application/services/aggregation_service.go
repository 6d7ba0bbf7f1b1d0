package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/email"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// AggregationService computes idempotent daily rollups from raw data points
type AggregationService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	broadcaster messaging.Broadcaster
	emailSvc    email.Service
}

// NewAggregationService creates the aggregation service singleton
func NewAggregationService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, broadcaster messaging.Broadcaster, emailSvc email.Service) *AggregationService {
	return &AggregationService{
		logger:      logger,
		perfTracker: perfTracker,
		broadcaster: broadcaster,
		emailSvc:    emailSvc,
	}
}

// AggregateDay recomputes all rollups for one tenant/platform/day from the
// raw facts. Re-running over an unchanged fact set leaves every row
// bit-identical; the upsert replaces, never accumulates.
func (s *AggregationService) AggregateDay(tenantCtx *tenant.Context, platform analytics.Platform, day time.Time, backfill bool) ([]*analytics.AggregatedMetric, error) {
	marker := s.perfTracker.StartOperation("aggregate_day", tenantCtx.TenantID)
	defer marker.Complete()

	points, err := tenantCtx.DataPointRepo().FindForDay(tenantCtx.TenantID, platform, day)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load facts for aggregation: %w", err)
	}

	periodDate := analytics.PeriodKey(day)
	groups := groupByMetric(points)
	aggRepo := tenantCtx.AggregateRepo()

	metrics := make([]*analytics.AggregatedMetric, 0, len(groups))
	for _, group := range groups {
		value, err := analytics.Reduce(group.metricType, group.values)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}

		metric := &analytics.AggregatedMetric{
			TenantID:       tenantCtx.TenantID,
			Platform:       platform,
			MetricName:     group.metricName,
			MetricType:     group.metricType,
			PeriodDate:     periodDate,
			AggregateValue: value,
			SampleCount:    len(group.values),
			UpdatedAt:      time.Now().UTC(),
		}

		if err := s.detectConflict(tenantCtx, metric, backfill); err != nil {
			marker.SetError(err)
			return nil, err
		}

		if err := aggRepo.Upsert(metric); err != nil {
			marker.SetError(err)
			return nil, err
		}
		metrics = append(metrics, metric)
	}

	tenantCtx.CacheManager.InvalidateAnalytics(tenantCtx.TenantID)

	if s.broadcaster != nil && len(metrics) > 0 {
		s.broadcaster.Broadcast(tenantCtx.TenantID, &messaging.LiveEvent{
			Event: "aggregation_completed",
			Payload: map[string]any{
				"platform":   platform,
				"periodDate": periodDate,
				"metrics":    len(metrics),
			},
		})
	}

	marker.SetSuccess(true)
	marker.AddMetadata("metrics", len(metrics))
	s.logger.Aggregation().Info("Daily aggregation completed",
		"tenantId", tenantCtx.TenantID, "platform", platform, "periodDate", periodDate,
		"points", len(points), "metrics", len(metrics), "backfill", backfill, "duration", marker.Duration)
	return metrics, nil
}

// AggregateTenantDay rolls up every platform with facts on the given day.
func (s *AggregationService) AggregateTenantDay(tenantCtx *tenant.Context, day time.Time) (int, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	tr := analytics.TimeRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	platforms, err := tenantCtx.DataPointRepo().ActivePlatforms(tenantCtx.TenantID, tr)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, platform := range platforms {
		metrics, err := s.AggregateDay(tenantCtx, platform, dayStart, false)
		if err != nil {
			return total, err
		}
		total += len(metrics)
	}
	return total, nil
}

// Backfill recomputes rollups over a range for late-arriving data. Conflicts
// with stored values are expected here and carry the acknowledgment flag.
func (s *AggregationService) Backfill(tenantCtx *tenant.Context, platform analytics.Platform, tr analytics.TimeRange) (int, error) {
	if err := tr.Validate(); err != nil {
		return 0, err
	}

	total := 0
	for _, dayKey := range tr.Days() {
		day, err := time.Parse(analytics.PeriodDateLayout, dayKey)
		if err != nil {
			return total, err
		}
		metrics, err := s.AggregateDay(tenantCtx, platform, day, true)
		if err != nil {
			return total, err
		}
		total += len(metrics)
	}

	s.logger.Aggregation().Info("Backfill completed",
		"tenantId", tenantCtx.TenantID, "platform", platform,
		"from", analytics.PeriodKey(tr.Start), "to", analytics.PeriodKey(tr.End), "metrics", total)
	return total, nil
}

// detectConflict compares a recomputed metric against the stored row. A
// differing recompute over the same sample count means the stored value
// could never have been produced from these facts; that is a correctness
// defect and goes to the alert channel. With new facts or an acknowledged
// backfill, superseding the row is the expected path.
func (s *AggregationService) detectConflict(tenantCtx *tenant.Context, metric *analytics.AggregatedMetric, backfill bool) error {
	stored, err := tenantCtx.AggregateRepo().FindByKey(tenantCtx.TenantID, metric.Platform, metric.MetricName, metric.PeriodDate)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}
	if stored.AggregateValue == metric.AggregateValue && stored.SampleCount == metric.SampleCount {
		return nil
	}

	conflict := &analytics.AggregationConflict{
		TenantID:      metric.TenantID,
		Platform:      metric.Platform,
		MetricName:    metric.MetricName,
		PeriodDate:    metric.PeriodDate,
		StoredValue:   stored.AggregateValue,
		ComputedValue: metric.AggregateValue,
		Acknowledged:  backfill || stored.SampleCount != metric.SampleCount,
	}

	if conflict.Acknowledged {
		s.logger.Aggregation().Info("Aggregate superseded by recompute",
			"tenantId", metric.TenantID, "key", metric.Key(),
			"storedValue", stored.AggregateValue, "computedValue", metric.AggregateValue,
			"storedSamples", stored.SampleCount, "computedSamples", metric.SampleCount)
		return nil
	}

	s.logger.Alert().Error("Unexpected aggregation conflict",
		"tenantId", metric.TenantID, "key", metric.Key(),
		"storedValue", stored.AggregateValue, "computedValue", metric.AggregateValue,
		"sampleCount", metric.SampleCount)

	if s.emailSvc != nil && tenantCtx.Config.AlertEmail != "" {
		if mailErr := s.emailSvc.SendConflictAlert(tenantCtx.Config.AlertEmail, metric.TenantID,
			string(metric.Platform), metric.MetricName, metric.PeriodDate,
			stored.AggregateValue, metric.AggregateValue); mailErr != nil {
			s.logger.Alert().Warn("Failed to send conflict alert email", "error", mailErr.Error())
		}
	}

	// The recomputed value wins; the conflict is recorded, not fatal.
	s.logger.Aggregation().Warn("Conflict recorded", "detail", conflict.Error())
	return nil
}

type metricGroup struct {
	metricName string
	metricType analytics.MetricType
	values     []float64
}

// groupByMetric buckets a day's points by metric name, preserving a
// deterministic order so re-runs aggregate identically.
func groupByMetric(points []*analytics.AnalyticsDataPoint) []*metricGroup {
	byName := make(map[string]*metricGroup)
	for _, point := range points {
		group, exists := byName[point.MetricName]
		if !exists {
			group = &metricGroup{
				metricName: point.MetricName,
				metricType: point.MetricType,
			}
			byName[point.MetricName] = group
		}
		group.values = append(group.values, point.Value)
	}

	groups := make([]*metricGroup, 0, len(byName))
	for _, group := range byName {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].metricName < groups[j].metricName })
	return groups
}
