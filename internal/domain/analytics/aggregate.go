package analytics

import (
	"fmt"
	"time"
)

// PeriodDateLayout is the canonical day-key format for aggregate rows.
const PeriodDateLayout = "2006-01-02"

// PeriodKey formats a timestamp as the UTC day key it aggregates into.
func PeriodKey(t time.Time) string {
	return t.UTC().Format(PeriodDateLayout)
}

// TimeRange bounds a dashboard or insight query. End is exclusive.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate rejects inverted or zero ranges.
func (r TimeRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return NewValidationError("timeRange", "start and end are required")
	}
	if !r.End.After(r.Start) {
		return NewValidationError("timeRange", "end must be after start")
	}
	return nil
}

// Days returns the UTC day keys covered by the range, oldest first.
func (r TimeRange) Days() []string {
	var days []string
	for d := r.Start.UTC().Truncate(24 * time.Hour); d.Before(r.End.UTC()); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(PeriodDateLayout))
	}
	return days
}

// LastNDays returns a range covering the n complete days ending now.
func LastNDays(n int) TimeRange {
	end := time.Now().UTC()
	return TimeRange{Start: end.AddDate(0, 0, -n), End: end}
}

// AggregatedMetric is a derived, idempotently recomputable rollup of one
// metric for one (tenant, platform, metric, day) key. Recomputing from the
// same fact set always yields the same aggregate value and sample count.
type AggregatedMetric struct {
	TenantID       string     `json:"tenantId"`
	Platform       Platform   `json:"platform"`
	MetricName     string     `json:"metricName"`
	MetricType     MetricType `json:"metricType"`
	PeriodDate     string     `json:"periodDate"`
	AggregateValue float64    `json:"aggregateValue"`
	SampleCount    int        `json:"sampleCount"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Key returns the upsert key for the aggregate row.
func (m *AggregatedMetric) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s", m.TenantID, m.Platform, m.MetricName, m.PeriodDate)
}

// Reduce applies the aggregation rule for the metric type over a set of
// raw values. It is a pure function of its inputs; the aggregation engine
// relies on that for idempotent re-runs.
func Reduce(mt MetricType, values []float64) (float64, error) {
	rule, err := RuleFor(mt)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	switch rule {
	case RuleSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum, nil
	case RuleAverage:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values)), nil
	case RuleCount:
		return float64(len(values)), nil
	}
	return 0, fmt.Errorf("unhandled aggregation rule %q", rule)
}

// PlatformMetrics is a derived per-platform view over aggregate rows for a
// requested range. It is never stored or independently mutated.
type PlatformMetrics struct {
	Platform         Platform `json:"platform"`
	TotalRevenue     float64  `json:"totalRevenue"`
	ActiveUsers      int      `json:"activeUsers"`
	ConversionRate   float64  `json:"conversionRate"`
	EngagementScore  float64  `json:"engagementScore"`
	PerformanceIndex float64  `json:"performanceIndex"`
	GrowthRate       float64  `json:"growthRate"`
	SampleCount      int      `json:"sampleCount"`
}
