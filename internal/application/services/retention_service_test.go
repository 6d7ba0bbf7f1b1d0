package services

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionCleanup(t *testing.T) {
	retention := NewRetentionService(testLogger(t), performance.NewTracker())
	tenantCtx := newTestTenant(t, "standard")
	tenantCtx.Config.RetentionDays = 30

	now := time.Now().UTC()
	expired := now.AddDate(0, 0, -45)
	recent := now.AddDate(0, 0, -5)

	seedPoints(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", expired, 100, 200)
	seedPoints(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", recent, 300)
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", analytics.PeriodKey(expired), 300, 2)
	seedAggregate(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue", analytics.PeriodKey(recent), 300, 1)

	result, err := retention.Cleanup(tenantCtx)
	require.NoError(t, err)
	assert.Equal(t, "acme", result.TenantID)
	assert.Equal(t, int64(2), result.DataPointsRemoved)
	assert.Equal(t, int64(1), result.AggregatesRemoved)

	remaining, err := tenantCtx.DataPointRepo().CountForTenant("acme")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	kept, err := tenantCtx.AggregateRepo().FindByKey("acme", analytics.PlatformBizoholic, "daily_revenue", analytics.PeriodKey(recent))
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestRetentionCleanupNoExpiredRows(t *testing.T) {
	retention := NewRetentionService(testLogger(t), performance.NewTracker())
	tenantCtx := newTestTenant(t, "standard")
	tenantCtx.Config.RetentionDays = 90

	seedPoints(t, tenantCtx, analytics.PlatformBizoholic, analytics.MetricTypeRevenue, "daily_revenue",
		time.Now().UTC().AddDate(0, 0, -2), 100)

	result, err := retention.Cleanup(tenantCtx)
	require.NoError(t, err)
	assert.Zero(t, result.DataPointsRemoved)
	assert.Zero(t, result.AggregatesRemoved)
}
