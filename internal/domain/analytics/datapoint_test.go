package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPoint() *AnalyticsDataPoint {
	return &AnalyticsDataPoint{
		ID:         "01J0000000000000000000TEST",
		TenantID:   "acme",
		Platform:   PlatformBizoholic,
		MetricType: MetricTypeRevenue,
		MetricName: "daily_revenue",
		Value:      125.50,
		RecordedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDataPointValidate(t *testing.T) {
	require.NoError(t, validPoint().Validate())

	t.Run("missing tenant", func(t *testing.T) {
		p := validPoint()
		p.TenantID = ""
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tenantId")
	})

	t.Run("unregistered platform", func(t *testing.T) {
		p := validPoint()
		p.Platform = "myspace"
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "platform")
	})

	t.Run("unknown metric type", func(t *testing.T) {
		p := validPoint()
		p.MetricType = "velocity"
		require.Error(t, p.Validate())
	})

	t.Run("empty metric name", func(t *testing.T) {
		p := validPoint()
		p.MetricName = ""
		require.Error(t, p.Validate())
	})

	t.Run("non-finite value", func(t *testing.T) {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			p := validPoint()
			p.Value = v
			require.Error(t, p.Validate())
		}
	})
}

func TestDimensionsValidate(t *testing.T) {
	d := Dimensions{"region": "us-east", "score": 4.5, "mobile": true}
	require.NoError(t, d.Validate())

	t.Run("int coerced to float", func(t *testing.T) {
		d := Dimensions{"count": 7}
		require.NoError(t, d.Validate())
		assert.Equal(t, float64(7), d["count"])
	})

	t.Run("nested value rejected", func(t *testing.T) {
		d := Dimensions{"nested": map[string]any{"a": 1}}
		require.Error(t, d.Validate())
	})

	t.Run("slice rejected", func(t *testing.T) {
		d := Dimensions{"tags": []string{"a", "b"}}
		require.Error(t, d.Validate())
	})
}

func TestIsRegisteredPlatform(t *testing.T) {
	for _, p := range RegisteredPlatforms() {
		assert.True(t, IsRegisteredPlatform(p))
	}
	assert.False(t, IsRegisteredPlatform("facebook"))
	assert.False(t, IsRegisteredPlatform(""))
}
