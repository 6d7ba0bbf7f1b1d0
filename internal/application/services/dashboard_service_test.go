package services

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange() analytics.TimeRange {
	return analytics.TimeRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestDashboardBuild(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	tr := testRange()

	// Two platforms with rollups across the window; bizoholic outearns
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 100, 2)
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-02", 300, 3)
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeConversions, "orders", "2026-08-01", 10, 10)
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeOccurrence, "page_view", "2026-08-01", 50, 50)
	seedAggregate(t, tenantCtx, analytics.PlatformCoreldove, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 80, 1)
	seedAggregate(t, tenantCtx, analytics.PlatformCoreldove, analytics.MetricTypeEngagement, "session_score", "2026-08-01", 0.6, 4)

	result, err := dashboard.Build(tenantCtx, nil, tr, false)
	require.NoError(t, err)

	require.Len(t, result.PlatformMetrics, 2)
	biz := result.PlatformMetrics[analytics.PlatformBizoholic]
	require.NotNil(t, biz)
	assert.Equal(t, 400.0, biz.TotalRevenue)
	assert.Equal(t, 50, biz.ActiveUsers)
	assert.InDelta(t, 0.2, biz.ConversionRate, 1e-9) // 10 conversions over 50 occurrences
	assert.InDelta(t, 2.0, biz.GrowthRate, 1e-9)     // 100 -> 300 day over day

	cd := result.PlatformMetrics[analytics.PlatformCoreldove]
	require.NotNil(t, cd)
	assert.InDelta(t, 0.6, cd.EngagementScore, 1e-9)

	// KPI summary is derived purely from the rows above
	assert.Equal(t, 480.0, result.KPISummary.TotalRevenue)
	assert.Equal(t, analytics.PlatformBizoholic, result.KPISummary.TopPerformingPlatform)
	assert.Equal(t, 2, result.KPISummary.ActivePlatforms)
	assert.Equal(t, "standard", result.SubscriptionTier)

	// Standard tier never carries the predictions field
	assert.Nil(t, result.Predictions)
}

func TestDashboardEntitlementGatesPredictions(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tr := testRange()

	t.Run("standard tier omits the field even when requested", func(t *testing.T) {
		tenantCtx := newTestTenant(t, "standard")
		seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 100, 1)

		result, err := dashboard.Build(tenantCtx, nil, tr, true)
		require.NoError(t, err)
		assert.Nil(t, result.Predictions)
	})

	t.Run("growth tier carries the field even with no projectable data", func(t *testing.T) {
		tenantCtx := newTestTenant(t, "growth")
		seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 100, 1)

		result, err := dashboard.Build(tenantCtx, nil, tr, true)
		require.NoError(t, err)
		require.NotNil(t, result.Predictions)
		assert.Empty(t, *result.Predictions) // one day of history is not enough to project
	})

	t.Run("standalone predictions call is refused for standard", func(t *testing.T) {
		tenantCtx := newTestTenant(t, "standard")
		_, err := dashboard.Predictions(tenantCtx, tr)
		require.Error(t, err)
		assert.IsType(t, &analytics.EntitlementError{}, err)
	})
}

func TestDashboardExcludesEndDay(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	tr := analytics.TimeRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
	}

	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-09", 100, 1)
	// A rollup on the exclusive end day never reaches the KPI totals
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-11", 999, 1)

	result, err := dashboard.Build(tenantCtx, nil, tr, false)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.KPISummary.TotalRevenue)
	assert.Equal(t, 100.0, result.PlatformMetrics[analytics.PlatformBizoholic].TotalRevenue)
}

func TestDashboardPlatformFilter(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	tr := testRange()

	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 100, 1)
	seedAggregate(t, tenantCtx, analytics.PlatformCoreldove, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 200, 1)

	result, err := dashboard.Build(tenantCtx, []analytics.Platform{analytics.PlatformCoreldove}, tr, false)
	require.NoError(t, err)
	require.Len(t, result.PlatformMetrics, 1)
	assert.Contains(t, result.PlatformMetrics, analytics.PlatformCoreldove)

	t.Run("unregistered platform in filter rejected", func(t *testing.T) {
		_, err := dashboard.Build(tenantCtx, []analytics.Platform{"myspace"}, tr, false)
		require.Error(t, err)
		assert.IsType(t, &analytics.ValidationError{}, err)
	})
}

func TestDashboardCaching(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	tr := testRange()

	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 100, 1)

	first, err := dashboard.Build(tenantCtx, nil, tr, false)
	require.NoError(t, err)

	// New rows are invisible until invalidation; the cached snapshot serves
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-02", 999, 1)
	cached, err := dashboard.Build(tenantCtx, nil, tr, false)
	require.NoError(t, err)
	assert.Equal(t, first.KPISummary.TotalRevenue, cached.KPISummary.TotalRevenue)

	tenantCtx.CacheManager.InvalidateAnalytics(tenantCtx.TenantID)
	fresh, err := dashboard.Build(tenantCtx, nil, tr, false)
	require.NoError(t, err)
	assert.Equal(t, 1099.0, fresh.KPISummary.TotalRevenue)
}

func TestPlatformMetricsFor(t *testing.T) {
	_, _, _, _, dashboard := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	tr := testRange()

	seedAggregate(t, tenantCtx, analytics.PlatformQuanttrade, analytics.MetricTypeRevenue, "daily_revenue", "2026-08-01", 500, 2)

	metrics, err := dashboard.PlatformMetricsFor(tenantCtx, analytics.PlatformQuanttrade, tr)
	require.NoError(t, err)
	assert.Equal(t, 500.0, metrics.TotalRevenue)

	t.Run("platform with no rows yields an empty view", func(t *testing.T) {
		metrics, err := dashboard.PlatformMetricsFor(tenantCtx, analytics.PlatformDirectory, tr)
		require.NoError(t, err)
		assert.Equal(t, analytics.PlatformDirectory, metrics.Platform)
		assert.Zero(t, metrics.TotalRevenue)
	})

	t.Run("unregistered platform rejected", func(t *testing.T) {
		_, err := dashboard.PlatformMetricsFor(tenantCtx, "myspace", tr)
		require.Error(t, err)
	})
}
