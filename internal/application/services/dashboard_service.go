package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/domain/entitlement"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// maxRecommendations caps the flattened action list on the dashboard
const maxRecommendations = 5

// DashboardService assembles the transient dashboard response from
// aggregate rows, the current insight generation, and (when entitled)
// predictions. Nothing it computes is persisted.
type DashboardService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	insightSvc  *InsightService
	predictSvc  *PredictionService
}

// NewDashboardService creates the dashboard service singleton
func NewDashboardService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, insightSvc *InsightService, predictSvc *PredictionService) *DashboardService {
	return &DashboardService{
		logger:      logger,
		perfTracker: perfTracker,
		insightSvc:  insightSvc,
		predictSvc:  predictSvc,
	}
}

// Build assembles the dashboard for a tenant over a range, optionally
// restricted to a platform filter. The KPI summary is computed purely from
// the platform metric rows included in the same response.
func (s *DashboardService) Build(tenantCtx *tenant.Context, platforms []analytics.Platform, tr analytics.TimeRange, includePredictions bool) (*analytics.Dashboard, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	for _, p := range platforms {
		if !analytics.IsRegisteredPlatform(p) {
			return nil, analytics.NewValidationError("platforms", fmt.Sprintf("unregistered platform %q", p))
		}
	}

	marker := s.perfTracker.StartOperation("build_dashboard", tenantCtx.TenantID)
	defer marker.Complete()

	cacheKey := dashboardCacheKey(platforms, tr, includePredictions)
	if cached, exists := tenantCtx.CacheManager.GetDashboard(tenantCtx.TenantID, cacheKey); exists {
		marker.SetSuccess(true)
		return cached, nil
	}

	if len(platforms) == 0 {
		active, err := tenantCtx.DataPointRepo().ActivePlatforms(tenantCtx.TenantID, tr)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		platforms = active
	}

	aggregates, err := tenantCtx.AggregateRepo().FindInRange(tenantCtx.TenantID, platforms, tr)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	platformMetrics := computePlatformMetrics(platforms, aggregates)

	insights, err := s.insightSvc.Current(tenantCtx)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	dashboard := &analytics.Dashboard{
		TenantID:              tenantCtx.TenantID,
		TimeRange:             tr,
		PlatformMetrics:       platformMetrics,
		CrossPlatformInsights: insights,
		AIRecommendations:     flattenRecommendations(insights),
		KPISummary:            computeKPISummary(platformMetrics),
		SubscriptionTier:      string(tenantCtx.SubscriptionTier()),
		GeneratedAt:           time.Now().UTC(),
	}

	// The predictions field is present (possibly empty) for entitled tiers
	// and absent entirely otherwise; clients distinguish "not entitled"
	// from "no data yet" by field presence.
	if includePredictions && tenantCtx.HasFeature(entitlement.FeaturePredictions) {
		predictions, err := s.predictSvc.Project(tenantCtx, platforms, tr)
		if err != nil {
			marker.SetError(err)
			return nil, err
		}
		dashboard.Predictions = &predictions
	}

	tenantCtx.CacheManager.SetDashboard(tenantCtx.TenantID, cacheKey, dashboard)
	timeframe := timeframeKey(tr)
	for platform, metrics := range platformMetrics {
		tenantCtx.CacheManager.SetPlatformMetrics(tenantCtx.TenantID, platform, timeframe, metrics)
	}

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Dashboard assembled",
		"tenantId", tenantCtx.TenantID, "platforms", len(platformMetrics),
		"insights", len(insights), "predictions", dashboard.Predictions != nil, "duration", marker.Duration)
	return dashboard, nil
}

// Predictions returns the projections alone, for entitled tiers.
func (s *DashboardService) Predictions(tenantCtx *tenant.Context, tr analytics.TimeRange) ([]analytics.PlatformPrediction, error) {
	if !tenantCtx.HasFeature(entitlement.FeaturePredictions) {
		return nil, analytics.NewEntitlementError(string(entitlement.FeaturePredictions), string(tenantCtx.SubscriptionTier()))
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	platforms, err := tenantCtx.DataPointRepo().ActivePlatforms(tenantCtx.TenantID, tr)
	if err != nil {
		return nil, err
	}
	return s.predictSvc.Project(tenantCtx, platforms, tr)
}

// PlatformMetricsFor returns one platform's derived view over a range,
// cache-first.
func (s *DashboardService) PlatformMetricsFor(tenantCtx *tenant.Context, platform analytics.Platform, tr analytics.TimeRange) (*analytics.PlatformMetrics, error) {
	if !analytics.IsRegisteredPlatform(platform) {
		return nil, analytics.NewValidationError("platform", fmt.Sprintf("unregistered platform %q", platform))
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	timeframe := timeframeKey(tr)
	if cached, exists := tenantCtx.CacheManager.GetPlatformMetrics(tenantCtx.TenantID, platform, timeframe); exists {
		return cached, nil
	}

	aggregates, err := tenantCtx.AggregateRepo().FindInRange(tenantCtx.TenantID, []analytics.Platform{platform}, tr)
	if err != nil {
		return nil, err
	}

	computed := computePlatformMetrics([]analytics.Platform{platform}, aggregates)
	metrics, exists := computed[platform]
	if !exists {
		metrics = &analytics.PlatformMetrics{Platform: platform}
	}
	tenantCtx.CacheManager.SetPlatformMetrics(tenantCtx.TenantID, platform, timeframe, metrics)
	return metrics, nil
}

func timeframeKey(tr analytics.TimeRange) string {
	return analytics.PeriodKey(tr.Start) + ".." + analytics.PeriodKey(tr.End)
}

func dashboardCacheKey(platforms []analytics.Platform, tr analytics.TimeRange, includePredictions bool) string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	sort.Strings(names)

	key := analytics.PeriodKey(tr.Start) + ".." + analytics.PeriodKey(tr.End)
	if len(names) > 0 {
		key += "|" + strings.Join(names, ",")
	}
	if includePredictions {
		key += "|pred"
	}
	return key
}

// computePlatformMetrics reduces aggregate rows into one derived view per
// platform. Platforms with no rows in range are omitted.
func computePlatformMetrics(platforms []analytics.Platform, aggregates []*analytics.AggregatedMetric) map[analytics.Platform]*analytics.PlatformMetrics {
	type accumulator struct {
		revenueByDay     map[string]float64
		totalConversions float64
		occurrences      float64
		engagementSum    float64
		engagementCount  int
		performanceSum   float64
		performanceCount int
		sampleCount      int
	}

	accs := make(map[analytics.Platform]*accumulator)
	for _, agg := range aggregates {
		acc, exists := accs[agg.Platform]
		if !exists {
			acc = &accumulator{revenueByDay: make(map[string]float64)}
			accs[agg.Platform] = acc
		}
		acc.sampleCount += agg.SampleCount

		switch agg.MetricType {
		case analytics.MetricTypeRevenue:
			acc.revenueByDay[agg.PeriodDate] += agg.AggregateValue
		case analytics.MetricTypeConversions:
			acc.totalConversions += agg.AggregateValue
		case analytics.MetricTypeOccurrence:
			acc.occurrences += agg.AggregateValue
		case analytics.MetricTypeEngagement:
			acc.engagementSum += agg.AggregateValue
			acc.engagementCount++
		case analytics.MetricTypePerformance:
			acc.performanceSum += agg.AggregateValue
			acc.performanceCount++
		}
	}

	out := make(map[analytics.Platform]*analytics.PlatformMetrics, len(accs))
	for platform, acc := range accs {
		metrics := &analytics.PlatformMetrics{
			Platform:    platform,
			ActiveUsers: int(acc.occurrences),
			SampleCount: acc.sampleCount,
		}

		days := make([]string, 0, len(acc.revenueByDay))
		for day := range acc.revenueByDay {
			days = append(days, day)
		}
		sort.Strings(days)
		dailyRevenue := make([]float64, len(days))
		for i, day := range days {
			dailyRevenue[i] = acc.revenueByDay[day]
			metrics.TotalRevenue += acc.revenueByDay[day]
		}
		if len(dailyRevenue) >= 2 {
			metrics.GrowthRate = relativeShift(dailyRevenue)
		}

		if acc.occurrences > 0 {
			metrics.ConversionRate = acc.totalConversions / acc.occurrences
		}
		if acc.engagementCount > 0 {
			metrics.EngagementScore = acc.engagementSum / float64(acc.engagementCount)
		}
		if acc.performanceCount > 0 {
			metrics.PerformanceIndex = acc.performanceSum / float64(acc.performanceCount)
		}
		out[platform] = metrics
	}
	return out
}

// computeKPISummary derives the scalar rollups exclusively from the
// platform metric rows shipped in the same response.
func computeKPISummary(platformMetrics map[analytics.Platform]*analytics.PlatformMetrics) analytics.KPISummary {
	summary := analytics.KPISummary{ActivePlatforms: len(platformMetrics)}
	if len(platformMetrics) == 0 {
		return summary
	}

	var engagementTotal, conversionTotal, topRevenue float64
	first := true
	for platform, metrics := range platformMetrics {
		summary.TotalRevenue += metrics.TotalRevenue
		engagementTotal += metrics.EngagementScore
		conversionTotal += metrics.ConversionRate

		if first || metrics.TotalRevenue > topRevenue ||
			(metrics.TotalRevenue == topRevenue && platform < summary.TopPerformingPlatform) {
			summary.TopPerformingPlatform = platform
			topRevenue = metrics.TotalRevenue
			first = false
		}
	}

	n := float64(len(platformMetrics))
	summary.AvgEngagementScore = engagementTotal / n
	summary.AvgConversionRate = conversionTotal / n
	return summary
}

// flattenRecommendations collects the top insights' actions in rank order
func flattenRecommendations(insights []*analytics.CrossPlatformInsight) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, maxRecommendations)
	for _, insight := range insights {
		for _, action := range insight.RecommendedActions {
			if seen[action] {
				continue
			}
			seen[action] = true
			out = append(out, action)
			if len(out) == maxRecommendations {
				return out
			}
		}
	}
	return out
}
