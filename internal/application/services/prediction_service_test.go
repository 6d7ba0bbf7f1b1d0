package services

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeastSquares(t *testing.T) {
	t.Run("perfect linear series", func(t *testing.T) {
		intercept, slope := leastSquares([]float64{100, 110, 120, 130})
		assert.InDelta(t, 100, intercept, 1e-9)
		assert.InDelta(t, 10, slope, 1e-9)
	})

	t.Run("flat series", func(t *testing.T) {
		intercept, slope := leastSquares([]float64{50, 50, 50})
		assert.InDelta(t, 50, intercept, 1e-9)
		assert.InDelta(t, 0, slope, 1e-9)
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		intercept, slope := leastSquares(nil)
		assert.Zero(t, intercept)
		assert.Zero(t, slope)

		intercept, slope = leastSquares([]float64{42})
		assert.Equal(t, 42.0, intercept)
		assert.Zero(t, slope)
	})
}

func TestProjectExtendsTrend(t *testing.T) {
	_, _, _, prediction, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "growth")
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tr := analytics.TimeRange{Start: start, End: start.AddDate(0, 0, 4)}

	seedSeries(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue",
		start, []float64{100, 110, 120, 130}, 10)

	predictions, err := prediction.Project(tenantCtx, []analytics.Platform{analytics.PlatformBizoholic}, tr)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, analytics.PlatformBizoholic, p.Platform)
	assert.Equal(t, "daily_revenue", p.MetricName)
	assert.Equal(t, config.PredictionHorizonDays, p.HorizonDays)
	require.Len(t, p.ProjectedValues, config.PredictionHorizonDays)
	assert.InDelta(t, 140, p.ProjectedValues[0], 1e-6) // next point on the line
	assert.InDelta(t, 10, p.DailySlope, 1e-6)
	assert.Greater(t, p.Confidence, 0.0)
	assert.Less(t, p.Confidence, 1.0)
}

func TestProjectClampsNegativeProjections(t *testing.T) {
	_, _, _, prediction, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "growth")
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tr := analytics.TimeRange{Start: start, End: start.AddDate(0, 0, 4)}

	// Steep decline crosses zero within the horizon
	seedSeries(t, tenantCtx, analytics.PlatformCoreldove, analytics.MetricTypeRevenue, "daily_revenue",
		start, []float64{90, 60, 30, 10}, 5)

	predictions, err := prediction.Project(tenantCtx, []analytics.Platform{analytics.PlatformCoreldove}, tr)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	for _, v := range predictions[0].ProjectedValues {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	last := predictions[0].ProjectedValues[len(predictions[0].ProjectedValues)-1]
	assert.Zero(t, last)
}

func TestProjectSkipsThinHistory(t *testing.T) {
	_, _, _, prediction, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "growth")
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tr := analytics.TimeRange{Start: start, End: start.AddDate(0, 0, 4)}

	// Two observed days is below the projection floor
	seedSeries(t, tenantCtx, analytics.PlatformDirectory, analytics.MetricTypeRevenue, "daily_revenue",
		start, []float64{100, 110}, 5)
	// Non-revenue series never project
	seedSeries(t, tenantCtx, analytics.PlatformDirectory, analytics.MetricTypeEngagement, "session_score",
		start, []float64{0.5, 0.5, 0.5, 0.5}, 5)

	predictions, err := prediction.Project(tenantCtx, nil, tr)
	require.NoError(t, err)
	assert.Empty(t, predictions)
}
