package analytics

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

// SQLAggregateRepository handles derived rollup rows. The upsert replaces
// the row for its key so recomputation is idempotent by construction.
type SQLAggregateRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAggregateRepository creates a new instance of the repository.
func NewSQLAggregateRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAggregateRepository {
	return &SQLAggregateRepository{
		db:     db,
		logger: logger,
	}
}

var _ analytics.AggregateRepository = (*SQLAggregateRepository)(nil)

func (r *SQLAggregateRepository) guardTenant(operation, tenantID string) error {
	if tenantID == "" {
		r.logger.LogIsolationViolation(operation, "empty tenant id")
		return analytics.NewIsolationViolation(operation)
	}
	return nil
}

// Upsert replaces the aggregate row for its key.
func (r *SQLAggregateRepository) Upsert(metric *analytics.AggregatedMetric) error {
	if err := r.guardTenant("aggregate.upsert", metric.TenantID); err != nil {
		return err
	}

	const query = `
		INSERT INTO daily_metrics (tenant_id, platform, metric_name, period_date, metric_type, aggregate_value, sample_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, platform, metric_name, period_date)
		DO UPDATE SET metric_type = excluded.metric_type,
			aggregate_value = excluded.aggregate_value,
			sample_count = excluded.sample_count,
			updated_at = excluded.updated_at`

	start := time.Now()
	_, err := r.db.Exec(
		query,
		metric.TenantID,
		string(metric.Platform),
		metric.MetricName,
		metric.PeriodDate,
		string(metric.MetricType),
		metric.AggregateValue,
		metric.SampleCount,
		metric.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		r.logger.Database().Error("Aggregate upsert failed",
			"error", err.Error(),
			"tenantId", metric.TenantID,
			"platform", metric.Platform,
			"metricName", metric.MetricName,
			"periodDate", metric.PeriodDate)
		return fmt.Errorf("failed to upsert aggregate: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Aggregate upsert completed",
		"tenantId", metric.TenantID,
		"key", metric.Key(),
		"aggregateValue", metric.AggregateValue,
		"sampleCount", metric.SampleCount,
		"duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, metric.TenantID)
	}
	return nil
}

// FindByKey returns the stored aggregate for one key, or nil.
func (r *SQLAggregateRepository) FindByKey(tenantID string, platform analytics.Platform, metricName, periodDate string) (*analytics.AggregatedMetric, error) {
	if err := r.guardTenant("aggregate.find_by_key", tenantID); err != nil {
		return nil, err
	}

	const query = `
		SELECT tenant_id, platform, metric_name, period_date, metric_type, aggregate_value, sample_count, updated_at
		FROM daily_metrics
		WHERE tenant_id = ? AND platform = ? AND metric_name = ? AND period_date = ?`

	row := r.db.QueryRow(query, tenantID, string(platform), metricName, periodDate)
	metric, err := scanAggregate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load aggregate by key",
			"error", err.Error(), "tenantId", tenantID, "metricName", metricName, "periodDate", periodDate)
		return nil, fmt.Errorf("failed to load aggregate: %w", err)
	}
	return metric, nil
}

// FindInRange returns aggregate rows for the tenant across platforms and days.
func (r *SQLAggregateRepository) FindInRange(tenantID string, platforms []analytics.Platform, tr analytics.TimeRange) ([]*analytics.AggregatedMetric, error) {
	if err := r.guardTenant("aggregate.find_in_range", tenantID); err != nil {
		return nil, err
	}

	query := `
		SELECT tenant_id, platform, metric_name, period_date, metric_type, aggregate_value, sample_count, updated_at
		FROM daily_metrics
		WHERE tenant_id = ? AND period_date >= ? AND period_date <= ?`

	// End is exclusive; backing off a nanosecond lands on the last covered
	// day, which includes a partial final day only when End is not midnight
	// aligned. Matches TimeRange.Days.
	args := []any{tenantID, analytics.PeriodKey(tr.Start), analytics.PeriodKey(tr.End.Add(-time.Nanosecond))}

	if len(platforms) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(platforms)), ",")
		query += fmt.Sprintf(" AND platform IN (%s)", placeholders)
		for _, p := range platforms {
			args = append(args, string(p))
		}
	}
	query += " ORDER BY period_date, platform, metric_name"

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query aggregates in range",
			"error", err.Error(), "tenantId", tenantID)
		return nil, fmt.Errorf("failed to query aggregates: %w", err)
	}
	defer rows.Close()

	var metrics []*analytics.AggregatedMetric
	for rows.Next() {
		metric, err := scanAggregate(rows.Scan)
		if err != nil {
			r.logger.Database().Error("Failed to scan aggregate row", "error", err.Error())
			continue
		}
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Aggregates loaded in range",
		"tenantId", tenantID, "count", len(metrics), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, tenantID)
	}
	return metrics, nil
}

// DeleteOlderThan removes aggregates past the retention horizon.
func (r *SQLAggregateRepository) DeleteOlderThan(tenantID string, cutoffDay string) (int64, error) {
	if err := r.guardTenant("aggregate.delete_older_than", tenantID); err != nil {
		return 0, err
	}

	const query = `DELETE FROM daily_metrics WHERE tenant_id = ? AND period_date < ?`

	result, err := r.db.Exec(query, tenantID, cutoffDay)
	if err != nil {
		r.logger.Database().Error("Aggregate retention delete failed", "error", err.Error(), "tenantId", tenantID)
		return 0, fmt.Errorf("failed to delete expired aggregates: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

func scanAggregate(scan func(...any) error) (*analytics.AggregatedMetric, error) {
	var metric analytics.AggregatedMetric
	var platform, metricType, updatedAtStr string

	err := scan(
		&metric.TenantID,
		&platform,
		&metric.MetricName,
		&metric.PeriodDate,
		&metricType,
		&metric.AggregateValue,
		&metric.SampleCount,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	metric.Platform = analytics.Platform(platform)
	metric.MetricType = analytics.MetricType(metricType)
	metric.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &metric, nil
}
