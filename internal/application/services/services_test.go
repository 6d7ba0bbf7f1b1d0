package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/manager"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError + 4,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return logger
}

// newTestTenant builds a tenant context over an in-memory database with
// the full schema applied.
func newTestTenant(t *testing.T, tier string) *tenant.Context {
	t.Helper()
	logger := testLogger(t)

	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewTableCreator().CreateSchema(db.DB))

	return &tenant.Context{
		TenantID: "acme",
		Status:   "active",
		Config: &tenant.Config{
			TenantID:         "acme",
			Status:           "active",
			SubscriptionTier: tier,
			RetentionDays:    90,
		},
		Database:     &tenant.Database{Conn: db.DB, TenantID: "acme"},
		CacheManager: manager.NewManager(logger),
		Logger:       logger,
	}
}

func newTestServices(t *testing.T) (*IngestionService, *AggregationService, *InsightService, *PredictionService, *DashboardService) {
	t.Helper()
	logger := testLogger(t)
	tracker := performance.NewTracker()

	ingestion := NewIngestionService(logger, tracker, nil)
	aggregation := NewAggregationService(logger, tracker, nil, nil)
	insight := NewInsightService(logger, tracker, nil)
	prediction := NewPredictionService(logger, tracker)
	dashboard := NewDashboardService(logger, tracker, insight, prediction)
	return ingestion, aggregation, insight, prediction, dashboard
}

// seedPoints records raw facts directly through the repository so tests
// control the recorded_at timestamps precisely.
func seedPoints(t *testing.T, tenantCtx *tenant.Context, platform analytics.Platform, mt analytics.MetricType, name string, day time.Time, values ...float64) {
	t.Helper()
	repo := tenantCtx.DataPointRepo()
	for i, value := range values {
		require.NoError(t, repo.Store(&analytics.AnalyticsDataPoint{
			ID:         analytics.PeriodKey(day) + "_" + string(platform) + "_" + name + "_" + string(rune('a'+i)),
			TenantID:   tenantCtx.TenantID,
			Platform:   platform,
			MetricType: mt,
			MetricName: name,
			Value:      value,
			RecordedAt: day.Add(time.Duration(i+1) * time.Hour),
		}))
	}
}

// seedAggregate writes one rollup row directly, bypassing the service.
func seedAggregate(t *testing.T, tenantCtx *tenant.Context, platform analytics.Platform, mt analytics.MetricType, name, periodDate string, value float64, samples int) {
	t.Helper()
	require.NoError(t, tenantCtx.AggregateRepo().Upsert(&analytics.AggregatedMetric{
		TenantID:       tenantCtx.TenantID,
		Platform:       platform,
		MetricName:     name,
		MetricType:     mt,
		PeriodDate:     periodDate,
		AggregateValue: value,
		SampleCount:    samples,
		UpdatedAt:      time.Now().UTC(),
	}))
}
