package services

import (
	"sort"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

// minPredictionDays is the fewest observed days a projection will run on
const minPredictionDays = 3

// PredictionService projects daily revenue forward from aggregate history
// with a least-squares trend line. Projections are transient; nothing is
// written back to the store.
type PredictionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPredictionService creates the prediction service singleton
func NewPredictionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PredictionService {
	return &PredictionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Project fits a trend to each platform's daily revenue over the range and
// extends it over the configured horizon. Platforms without enough history
// are skipped; the result is a present-but-possibly-empty slice.
func (s *PredictionService) Project(tenantCtx *tenant.Context, platforms []analytics.Platform, tr analytics.TimeRange) ([]analytics.PlatformPrediction, error) {
	marker := s.perfTracker.StartOperation("project_predictions", tenantCtx.TenantID)
	defer marker.Complete()

	aggregates, err := tenantCtx.AggregateRepo().FindInRange(tenantCtx.TenantID, platforms, tr)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	type revenueHistory struct {
		byDay   map[string]float64
		samples int
	}
	histories := make(map[analytics.Platform]*revenueHistory)
	for _, agg := range aggregates {
		if agg.MetricType != analytics.MetricTypeRevenue {
			continue
		}
		history, exists := histories[agg.Platform]
		if !exists {
			history = &revenueHistory{byDay: make(map[string]float64)}
			histories[agg.Platform] = history
		}
		history.byDay[agg.PeriodDate] += agg.AggregateValue
		history.samples += agg.SampleCount
	}

	ordered := make([]analytics.Platform, 0, len(histories))
	for platform := range histories {
		ordered = append(ordered, platform)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	predictions := make([]analytics.PlatformPrediction, 0, len(ordered))
	for _, platform := range ordered {
		history := histories[platform]
		if len(history.byDay) < minPredictionDays {
			continue
		}

		days := make([]string, 0, len(history.byDay))
		for day := range history.byDay {
			days = append(days, day)
		}
		sort.Strings(days)
		values := make([]float64, len(days))
		for i, day := range days {
			values[i] = history.byDay[day]
		}

		intercept, slope := leastSquares(values)
		horizon := config.PredictionHorizonDays
		projected := make([]float64, horizon)
		for i := 0; i < horizon; i++ {
			x := float64(len(values) + i)
			projection := intercept + slope*x
			if projection < 0 {
				projection = 0
			}
			projected[i] = projection
		}

		predictions = append(predictions, analytics.PlatformPrediction{
			Platform:        platform,
			MetricName:      "daily_revenue",
			HorizonDays:     horizon,
			ProjectedValues: projected,
			DailySlope:      slope,
			Confidence:      confidenceFromSamples(history.samples),
		})
	}

	marker.SetSuccess(true)
	s.logger.Insight().Debug("Revenue projections computed",
		"tenantId", tenantCtx.TenantID, "platforms", len(predictions), "duration", marker.Duration)
	return predictions, nil
}

// leastSquares fits y = intercept + slope*x over x = 0..n-1
func leastSquares(values []float64) (intercept, slope float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return values[0], 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return intercept, slope
}
