package services

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDataPoint(t *testing.T) {
	ingestion, _, _, _, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")
	recordedAt := time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC)

	point, err := ingestion.Record(tenantCtx, &IngestRequest{
		Platform:   analytics.PlatformBizoholic,
		MetricType: analytics.MetricTypeRevenue,
		MetricName: "daily_revenue",
		Value:      149.99,
		Dimensions: analytics.Dimensions{"campaign": "summer"},
		RecordedAt: &recordedAt,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, point.ID)
	assert.Equal(t, "acme", point.TenantID)

	stored, err := tenantCtx.DataPointRepo().FindForDay("acme", analytics.PlatformBizoholic, recordedAt)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 149.99, stored[0].Value)
	assert.Equal(t, "summer", stored[0].Dimensions["campaign"])
}

func TestRecordDefaultsRecordedAt(t *testing.T) {
	ingestion, _, _, _, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")

	before := time.Now().UTC()
	point, err := ingestion.Record(tenantCtx, &IngestRequest{
		Platform:   analytics.PlatformThrillring,
		MetricType: analytics.MetricTypeOccurrence,
		MetricName: "session_start",
		Value:      1,
	})
	require.NoError(t, err)
	assert.False(t, point.RecordedAt.Before(before))
}

func TestRecordClampsFutureRecordedAt(t *testing.T) {
	ingestion, _, _, _, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")

	future := time.Now().UTC().Add(2 * time.Hour)
	point, err := ingestion.Record(tenantCtx, &IngestRequest{
		Platform:   analytics.PlatformBizoholic,
		MetricType: analytics.MetricTypeRevenue,
		MetricName: "daily_revenue",
		Value:      10,
		RecordedAt: &future,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), point.RecordedAt, time.Minute)

	t.Run("backdated timestamps are preserved", func(t *testing.T) {
		past := time.Now().UTC().AddDate(0, 0, -3)
		point, err := ingestion.Record(tenantCtx, &IngestRequest{
			Platform:   analytics.PlatformBizoholic,
			MetricType: analytics.MetricTypeRevenue,
			MetricName: "daily_revenue",
			Value:      10,
			RecordedAt: &past,
		})
		require.NoError(t, err)
		assert.True(t, point.RecordedAt.Equal(past))
	})
}

func TestRecordRejectsInvalidPoints(t *testing.T) {
	ingestion, _, _, _, _ := newTestServices(t)
	tenantCtx := newTestTenant(t, "standard")

	tests := []struct {
		name string
		req  *IngestRequest
	}{
		{"unregistered platform", &IngestRequest{Platform: "myspace", MetricType: analytics.MetricTypeRevenue, MetricName: "x", Value: 1}},
		{"unknown metric type", &IngestRequest{Platform: analytics.PlatformBizoholic, MetricType: "velocity", MetricName: "x", Value: 1}},
		{"empty metric name", &IngestRequest{Platform: analytics.PlatformBizoholic, MetricType: analytics.MetricTypeRevenue, Value: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingestion.Record(tenantCtx, tt.req)
			require.Error(t, err)
			assert.IsType(t, &analytics.ValidationError{}, err)
		})
	}

	// Rejected points never reach the fact store
	count, err := tenantCtx.DataPointRepo().CountForTenant("acme")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
