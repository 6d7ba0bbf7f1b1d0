package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	values := []float64{100, 250, 50}

	t.Run("revenue sums", func(t *testing.T) {
		got, err := Reduce(MetricTypeRevenue, values)
		require.NoError(t, err)
		assert.Equal(t, 400.0, got)
	})

	t.Run("conversions sum", func(t *testing.T) {
		got, err := Reduce(MetricTypeConversions, []float64{3, 5})
		require.NoError(t, err)
		assert.Equal(t, 8.0, got)
	})

	t.Run("engagement averages", func(t *testing.T) {
		got, err := Reduce(MetricTypeEngagement, []float64{0.2, 0.4, 0.6})
		require.NoError(t, err)
		assert.InDelta(t, 0.4, got, 1e-9)
	})

	t.Run("performance averages", func(t *testing.T) {
		got, err := Reduce(MetricTypePerformance, []float64{90, 110})
		require.NoError(t, err)
		assert.Equal(t, 100.0, got)
	})

	t.Run("occurrence counts", func(t *testing.T) {
		got, err := Reduce(MetricTypeOccurrence, []float64{1, 1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, 4.0, got)
	})

	t.Run("empty set reduces to zero", func(t *testing.T) {
		got, err := Reduce(MetricTypeRevenue, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("unknown type fails", func(t *testing.T) {
		_, err := Reduce("velocity", values)
		require.Error(t, err)
	})

	t.Run("pure function", func(t *testing.T) {
		first, err := Reduce(MetricTypeRevenue, values)
		require.NoError(t, err)
		second, err := Reduce(MetricTypeRevenue, values)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestTimeRangeValidate(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, TimeRange{Start: start, End: start.AddDate(0, 0, 7)}.Validate())
	assert.Error(t, TimeRange{}.Validate())
	assert.Error(t, TimeRange{Start: start, End: start}.Validate())
	assert.Error(t, TimeRange{Start: start.AddDate(0, 0, 1), End: start}.Validate())
}

func TestTimeRangeDays(t *testing.T) {
	tr := TimeRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []string{"2026-08-01", "2026-08-02", "2026-08-03"}, tr.Days())
}

func TestPeriodKey(t *testing.T) {
	// Naive local timestamps normalize to the UTC day
	loc := time.FixedZone("UTC+5", 5*3600)
	assert.Equal(t, "2026-07-31", PeriodKey(time.Date(2026, 8, 1, 2, 0, 0, 0, loc)))
	assert.Equal(t, "2026-08-01", PeriodKey(time.Date(2026, 8, 1, 23, 59, 0, 0, time.UTC)))
}
