package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

// InsightService runs the cross-platform pattern detectors over a tenant's
// aggregated metrics and persists each run as a superseding generation.
type InsightService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	broadcaster messaging.Broadcaster
}

// NewInsightService creates the insight service singleton
func NewInsightService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, broadcaster messaging.Broadcaster) *InsightService {
	return &InsightService{
		logger:      logger,
		perfTracker: perfTracker,
		broadcaster: broadcaster,
	}
}

// metricSeries is one platform+metric's daily values, oldest first
type metricSeries struct {
	platform   analytics.Platform
	metricName string
	metricType analytics.MetricType
	days       []string
	values     []float64
	samples    int
}

// Generate runs all detectors over the range, writes a new generation, and
// returns it ranked. Re-running over unchanged data reproduces the same
// insight IDs and scores under a fresh generation ID.
func (s *InsightService) Generate(tenantCtx *tenant.Context, tr analytics.TimeRange) ([]*analytics.CrossPlatformInsight, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	marker := s.perfTracker.StartOperation("generate_insights", tenantCtx.TenantID)
	defer marker.Complete()

	aggregates, err := tenantCtx.AggregateRepo().FindInRange(tenantCtx.TenantID, nil, tr)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load aggregates for insight generation: %w", err)
	}

	series := buildSeries(aggregates)
	totalRevenue := totalRevenueOf(series)
	periodStart, periodEnd := analytics.PeriodKey(tr.Start), analytics.PeriodKey(tr.End)
	now := time.Now().UTC()

	var insights []*analytics.CrossPlatformInsight
	insights = append(insights, s.detectTrends(tenantCtx.TenantID, series, totalRevenue, periodStart, periodEnd, now)...)
	insights = append(insights, s.detectDivergence(tenantCtx.TenantID, series, totalRevenue, periodStart, periodEnd, now)...)
	insights = append(insights, s.detectAnomalies(tenantCtx.TenantID, series, totalRevenue, periodStart, periodEnd, now)...)

	generationID := security.GenerateULID()
	for _, insight := range insights {
		insight.GenerationID = generationID
	}
	analytics.SortInsights(insights)

	if err := tenantCtx.InsightRepo().StoreGeneration(tenantCtx.TenantID, generationID, insights); err != nil {
		marker.SetError(err)
		return nil, err
	}

	tenantCtx.CacheManager.SetInsights(tenantCtx.TenantID, generationID, insights)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tenantCtx.TenantID, &messaging.LiveEvent{
			Event: "insights_generated",
			Payload: map[string]any{
				"generationId": generationID,
				"count":        len(insights),
			},
		})
	}

	marker.SetSuccess(true)
	marker.AddMetadata("insights", len(insights))
	s.logger.Insight().Info("Insight generation completed",
		"tenantId", tenantCtx.TenantID, "generationId", generationID,
		"series", len(series), "insights", len(insights), "duration", marker.Duration)
	return insights, nil
}

// Current returns the latest generation, preferring the cache.
func (s *InsightService) Current(tenantCtx *tenant.Context) ([]*analytics.CrossPlatformInsight, error) {
	if bin, exists := tenantCtx.CacheManager.GetInsights(tenantCtx.TenantID); exists {
		return bin.Insights, nil
	}

	insights, err := tenantCtx.InsightRepo().FindCurrent(tenantCtx.TenantID)
	if err != nil {
		return nil, err
	}
	if len(insights) > 0 {
		tenantCtx.CacheManager.SetInsights(tenantCtx.TenantID, insights[0].GenerationID, insights)
	}
	return insights, nil
}

// detectTrends flags revenue movements beyond the configured threshold.
func (s *InsightService) detectTrends(tenantID string, series []*metricSeries, totalRevenue float64, periodStart, periodEnd string, now time.Time) []*analytics.CrossPlatformInsight {
	var out []*analytics.CrossPlatformInsight

	for _, ms := range series {
		if ms.metricType != analytics.MetricTypeRevenue || len(ms.values) < 4 {
			continue
		}

		shift := relativeShift(ms.values)
		if math.Abs(shift) < config.TrendThresholdPct {
			continue
		}

		platformRevenue := sum(ms.values)
		impact := impactScore(platformRevenue, totalRevenue, shift)
		confidence := confidenceFromSamples(ms.samples)

		direction, verb := "upward", "accelerating"
		actions := []string{
			fmt.Sprintf("Increase budget allocation for %s while the trend holds", ms.platform),
			fmt.Sprintf("Review what changed on %s around the inflection and replicate it", ms.platform),
		}
		if shift < 0 {
			direction, verb = "downward", "declining"
			actions = []string{
				fmt.Sprintf("Audit recent campaign and pricing changes on %s", ms.platform),
				fmt.Sprintf("Compare %s against platforms holding steady over the same period", ms.platform),
			}
		}

		out = append(out, &analytics.CrossPlatformInsight{
			InsightID:   analytics.StableInsightID(tenantID, analytics.InsightTypeTrend, ms.metricName, []analytics.Platform{ms.platform}, periodStart, periodEnd),
			TenantID:    tenantID,
			InsightType: analytics.InsightTypeTrend,
			Title:       fmt.Sprintf("%s revenue trending %s", ms.platform, direction),
			Description: fmt.Sprintf("%s on %s is %s: the back half of the period moved %.0f%% against the front half.",
				ms.metricName, ms.platform, verb, shift*100),
			ImpactScore:        impact,
			Confidence:         confidence,
			AffectedPlatforms:  []analytics.Platform{ms.platform},
			RecommendedActions: actions,
			Priority:           analytics.PriorityFromScores(impact, confidence),
			GeneratedAt:        now,
		})
	}
	return out
}

// detectDivergence flags a conversion drop on one platform coinciding with
// an engagement rise on another.
func (s *InsightService) detectDivergence(tenantID string, series []*metricSeries, totalRevenue float64, periodStart, periodEnd string, now time.Time) []*analytics.CrossPlatformInsight {
	var drops, rises []*metricSeries
	for _, ms := range series {
		if len(ms.values) < 4 {
			continue
		}
		shift := relativeShift(ms.values)
		switch {
		case ms.metricType == analytics.MetricTypeConversions && shift <= -config.DivergenceMinShiftPct:
			drops = append(drops, ms)
		case ms.metricType == analytics.MetricTypeEngagement && shift >= config.DivergenceMinShiftPct:
			rises = append(rises, ms)
		}
	}

	var out []*analytics.CrossPlatformInsight
	for _, drop := range drops {
		for _, rise := range rises {
			if drop.platform == rise.platform {
				continue
			}

			dropShift := relativeShift(drop.values)
			platformRevenue := revenueForPlatform(series, drop.platform)
			impact := impactScore(platformRevenue, totalRevenue, dropShift)
			confidence := confidenceFromSamples(drop.samples + rise.samples)
			platforms := []analytics.Platform{drop.platform, rise.platform}

			out = append(out, &analytics.CrossPlatformInsight{
				InsightID:   analytics.StableInsightID(tenantID, analytics.InsightTypeDivergence, drop.metricName, platforms, periodStart, periodEnd),
				TenantID:    tenantID,
				InsightType: analytics.InsightTypeDivergence,
				Title:       fmt.Sprintf("Audience shifting from %s to %s", drop.platform, rise.platform),
				Description: fmt.Sprintf("%s conversions fell %.0f%% while %s engagement rose %.0f%% over the same period; the audience may be migrating.",
					drop.platform, math.Abs(dropShift)*100, rise.platform, relativeShift(rise.values)*100),
				ImpactScore:       impact,
				Confidence:        confidence,
				AffectedPlatforms: platforms,
				RecommendedActions: []string{
					fmt.Sprintf("Cross-promote %s offers to the growing %s audience", drop.platform, rise.platform),
					fmt.Sprintf("Check whether %s funnel changes coincide with the conversion drop", drop.platform),
				},
				Priority:    analytics.PriorityFromScores(impact, confidence),
				GeneratedAt: now,
			})
		}
	}
	return out
}

// detectAnomalies flags a last day outside the sigma band of the trailing
// baseline window.
func (s *InsightService) detectAnomalies(tenantID string, series []*metricSeries, totalRevenue float64, periodStart, periodEnd string, now time.Time) []*analytics.CrossPlatformInsight {
	var out []*analytics.CrossPlatformInsight

	for _, ms := range series {
		if len(ms.values) < 4 {
			continue
		}

		last := ms.values[len(ms.values)-1]
		baseline := ms.values[:len(ms.values)-1]
		if len(baseline) > config.BaselineWindowDays {
			baseline = baseline[len(baseline)-config.BaselineWindowDays:]
		}

		mean, stddev := meanStddev(baseline)
		if stddev == 0 {
			continue
		}
		z := (last - mean) / stddev
		if math.Abs(z) < config.AnomalySigma {
			continue
		}

		relDeviation := 0.0
		if mean != 0 {
			relDeviation = (last - mean) / math.Abs(mean)
		}
		platformRevenue := revenueForPlatform(series, ms.platform)
		impact := impactScore(platformRevenue, totalRevenue, relDeviation)
		confidence := confidenceFromSamples(ms.samples)

		direction := "above"
		if z < 0 {
			direction = "below"
		}

		out = append(out, &analytics.CrossPlatformInsight{
			InsightID:   analytics.StableInsightID(tenantID, analytics.InsightTypeAnomaly, ms.metricName, []analytics.Platform{ms.platform}, periodStart, periodEnd),
			TenantID:    tenantID,
			InsightType: analytics.InsightTypeAnomaly,
			Title:       fmt.Sprintf("Anomalous %s on %s", ms.metricName, ms.platform),
			Description: fmt.Sprintf("Latest %s on %s is %.1f standard deviations %s its %d-day baseline (%.2f vs mean %.2f).",
				ms.metricName, ms.platform, math.Abs(z), direction, len(baseline), last, mean),
			ImpactScore:       impact,
			Confidence:        confidence,
			AffectedPlatforms: []analytics.Platform{ms.platform},
			RecommendedActions: []string{
				fmt.Sprintf("Verify %s data collection on %s before acting on the spike", ms.metricName, ms.platform),
				"Correlate with deploys, campaigns, or outages on the same day",
			},
			Priority:    analytics.PriorityFromScores(impact, confidence),
			GeneratedAt: now,
		})
	}
	return out
}

// =============================================================================
// Series construction and scoring helpers
// =============================================================================

// buildSeries organizes aggregate rows into per-platform+metric daily
// series with a deterministic order.
func buildSeries(aggregates []*analytics.AggregatedMetric) []*metricSeries {
	byKey := make(map[string]*metricSeries)
	for _, agg := range aggregates {
		key := string(agg.Platform) + "|" + agg.MetricName
		ms, exists := byKey[key]
		if !exists {
			ms = &metricSeries{
				platform:   agg.Platform,
				metricName: agg.MetricName,
				metricType: agg.MetricType,
			}
			byKey[key] = ms
		}
		ms.days = append(ms.days, agg.PeriodDate)
		ms.values = append(ms.values, agg.AggregateValue)
		ms.samples += agg.SampleCount
	}

	out := make([]*metricSeries, 0, len(byKey))
	for _, ms := range byKey {
		sortSeriesByDay(ms)
		out = append(out, ms)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].platform != out[j].platform {
			return out[i].platform < out[j].platform
		}
		return out[i].metricName < out[j].metricName
	})
	return out
}

func sortSeriesByDay(ms *metricSeries) {
	idx := make([]int, len(ms.days))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return ms.days[idx[a]] < ms.days[idx[b]] })

	days := make([]string, len(ms.days))
	values := make([]float64, len(ms.values))
	for i, j := range idx {
		days[i] = ms.days[j]
		values[i] = ms.values[j]
	}
	ms.days, ms.values = days, values
}

// relativeShift compares the mean of the back half of a series against the
// front half. Returns 0 when the front half has no signal.
func relativeShift(values []float64) float64 {
	half := len(values) / 2
	front, back := mean(values[:half]), mean(values[half:])
	if front == 0 {
		return 0
	}
	return (back - front) / math.Abs(front)
}

// impactScore estimates revenue at stake as the affected platform's share
// of total revenue scaled by the relative shift, clamped to [0,1].
func impactScore(platformRevenue, totalRevenue, relShift float64) float64 {
	if totalRevenue <= 0 {
		return 0
	}
	impact := (platformRevenue / totalRevenue) * math.Abs(relShift)
	return math.Min(1, math.Max(0, impact))
}

// confidenceFromSamples grows toward 1 with sample count; low-volume
// patterns score low confidence regardless of how dramatic they look.
func confidenceFromSamples(samples int) float64 {
	n := float64(samples)
	return n / (n + config.ConfidenceSamplePrior)
}

func totalRevenueOf(series []*metricSeries) float64 {
	var total float64
	for _, ms := range series {
		if ms.metricType == analytics.MetricTypeRevenue {
			total += sum(ms.values)
		}
	}
	return total
}

func revenueForPlatform(series []*metricSeries, platform analytics.Platform) float64 {
	var total float64
	for _, ms := range series {
		if ms.platform == platform && ms.metricType == analytics.MetricTypeRevenue {
			total += sum(ms.values)
		}
	}
	return total
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return m, math.Sqrt(variance)
}
