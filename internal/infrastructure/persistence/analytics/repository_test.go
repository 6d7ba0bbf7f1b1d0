package analytics

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError + 4, // silence below fatal-ish
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return logger
}

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewTableCreator().CreateSchema(db.DB))
	return db
}

var pointSeq atomic.Int64

func storePoint(t *testing.T, repo *SQLDataPointRepository, tenantID string, platform analytics.Platform, mt analytics.MetricType, name string, value float64, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Store(&analytics.AnalyticsDataPoint{
		ID:         fmt.Sprintf("pt_%06d", pointSeq.Add(1)),
		TenantID:   tenantID,
		Platform:   platform,
		MetricType: mt,
		MetricName: name,
		Value:      value,
		RecordedAt: at,
	}))
}
