package analytics

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAggregate(tenantID string, platform analytics.Platform, name, periodDate string, value float64, samples int) *analytics.AggregatedMetric {
	return &analytics.AggregatedMetric{
		TenantID:       tenantID,
		Platform:       platform,
		MetricName:     name,
		PeriodDate:     periodDate,
		MetricType:     analytics.MetricTypeRevenue,
		AggregateValue: value,
		SampleCount:    samples,
		UpdatedAt:      time.Date(2026, 8, 11, 3, 0, 0, 0, time.UTC),
	}
}

func TestAggregateUpsertReplacesRow(t *testing.T) {
	repo := NewSQLAggregateRepository(testDB(t), testLogger(t))

	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10", 400, 3)))
	// Recomputation for the same key overwrites rather than accumulates
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10", 450, 4)))

	metric, err := repo.FindByKey("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10")
	require.NoError(t, err)
	require.NotNil(t, metric)
	assert.Equal(t, 450.0, metric.AggregateValue)
	assert.Equal(t, 4, metric.SampleCount)

	tr := analytics.TimeRange{
		Start: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
	}
	metrics, err := repo.FindInRange("acme", nil, tr)
	require.NoError(t, err)
	assert.Len(t, metrics, 1)
}

func TestAggregateFindByKeyMissing(t *testing.T) {
	repo := NewSQLAggregateRepository(testDB(t), testLogger(t))

	metric, err := repo.FindByKey("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10")
	require.NoError(t, err)
	assert.Nil(t, metric)
}

func TestAggregateFindInRange(t *testing.T) {
	repo := NewSQLAggregateRepository(testDB(t), testLogger(t))

	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-09", 100, 2)))
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformCoreldove, "daily_revenue", "2026-08-09", 200, 1)))
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10", 300, 5)))
	// Outside the queried window
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-20", 999, 1)))
	// Another tenant never surfaces
	require.NoError(t, repo.Upsert(testAggregate("other", analytics.PlatformBizoholic, "daily_revenue", "2026-08-09", 999, 1)))

	tr := analytics.TimeRange{
		Start: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
	}

	all, err := repo.FindInRange("acme", nil, tr)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by period_date then platform
	assert.Equal(t, "2026-08-09", all[0].PeriodDate)
	assert.Equal(t, analytics.PlatformBizoholic, all[0].Platform)
	assert.Equal(t, analytics.PlatformCoreldove, all[1].Platform)
	assert.Equal(t, "2026-08-10", all[2].PeriodDate)

	filtered, err := repo.FindInRange("acme", []analytics.Platform{analytics.PlatformCoreldove}, tr)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 200.0, filtered[0].AggregateValue)

	t.Run("end day is exclusive", func(t *testing.T) {
		oneDay := analytics.TimeRange{
			Start: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		}
		rows, err := repo.FindInRange("acme", nil, oneDay)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, m := range rows {
			assert.Equal(t, "2026-08-09", m.PeriodDate)
		}
	})

	t.Run("partial final day is covered", func(t *testing.T) {
		partial := analytics.TimeRange{
			Start: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 8, 10, 6, 0, 0, 0, time.UTC),
		}
		rows, err := repo.FindInRange("acme", nil, partial)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestAggregateDeleteOlderThan(t *testing.T) {
	repo := NewSQLAggregateRepository(testDB(t), testLogger(t))

	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-07-01", 1, 1)))
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-01", 2, 1)))
	require.NoError(t, repo.Upsert(testAggregate("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10", 3, 1)))

	deleted, err := repo.DeleteOlderThan("acme", "2026-08-05")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	metric, err := repo.FindByKey("acme", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10")
	require.NoError(t, err)
	assert.NotNil(t, metric)
}

func TestAggregateGuardsEmptyTenant(t *testing.T) {
	repo := NewSQLAggregateRepository(testDB(t), testLogger(t))

	err := repo.Upsert(testAggregate("", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10", 1, 1))
	require.Error(t, err)
	assert.IsType(t, &analytics.IsolationViolation{}, err)

	_, err = repo.FindByKey("", analytics.PlatformBizoholic, "daily_revenue", "2026-08-10")
	require.Error(t, err)
}
