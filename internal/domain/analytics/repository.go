package analytics

import "time"

// DataPointRepository defines the contract for the append-only fact store.
// Implementations must scope every statement by tenant at the lowest
// data-access layer and reject unscoped calls with IsolationViolation.
type DataPointRepository interface {
	// Store appends one immutable data point. The insert is atomic:
	// either the point exists with all fields or not at all.
	Store(point *AnalyticsDataPoint) error

	// FindForDay retrieves the raw points for one tenant/platform/day,
	// the input set for the aggregation engine.
	FindForDay(tenantID string, platform Platform, day time.Time) ([]*AnalyticsDataPoint, error)

	// CountForTenant returns the tenant's fact row count.
	CountForTenant(tenantID string) (int, error)

	// ActivePlatforms returns the platforms with at least one data point
	// in the range for the tenant.
	ActivePlatforms(tenantID string, tr TimeRange) ([]Platform, error)

	// DeleteOlderThan removes facts past the retention horizon for one
	// tenant. This is the only bulk-delete path in the system.
	DeleteOlderThan(tenantID string, cutoff time.Time) (int64, error)
}

// AggregateRepository defines the contract for derived rollup rows.
type AggregateRepository interface {
	// Upsert replaces the aggregate row for its key. Replaying the same
	// computation must leave the row bit-identical (replace, not
	// accumulate).
	Upsert(metric *AggregatedMetric) error

	// FindByKey returns the stored aggregate for one key, or nil.
	FindByKey(tenantID string, platform Platform, metricName, periodDate string) (*AggregatedMetric, error)

	// FindInRange returns aggregate rows for the tenant across the given
	// platforms and day range, oldest first.
	FindInRange(tenantID string, platforms []Platform, tr TimeRange) ([]*AggregatedMetric, error)

	// DeleteOlderThan removes aggregates past the retention horizon.
	DeleteOlderThan(tenantID string, cutoffDay string) (int64, error)
}

// InsightRepository defines the contract for insight generations.
type InsightRepository interface {
	// StoreGeneration persists one generator run's output under a new
	// generation ID. Prior generations are retained for audit.
	StoreGeneration(tenantID, generationID string, insights []*CrossPlatformInsight) error

	// FindCurrent returns the latest generation's insights, ranked.
	FindCurrent(tenantID string) ([]*CrossPlatformInsight, error)
}
