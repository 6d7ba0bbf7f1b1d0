// Package analytics provides the concrete SQL-based implementations for
// analytics persistence.
//
// Tenant isolation is enforced here, at the lowest data-access layer:
// every statement carries a tenant_id predicate and every entry point
// rejects an empty tenant with IsolationViolation before SQL is built.
// The surrounding per-tenant database handles are a second fence, not a
// substitute for this one.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

const timestampLayout = "2006-01-02 15:04:05"

// SQLDataPointRepository handles fact persistence to the tenant database.
type SQLDataPointRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLDataPointRepository creates a new instance of the repository.
func NewSQLDataPointRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLDataPointRepository {
	return &SQLDataPointRepository{
		db:     db,
		logger: logger,
	}
}

var _ analytics.DataPointRepository = (*SQLDataPointRepository)(nil)

// guardTenant rejects unscoped calls. Raising here rather than returning
// empty results is deliberate: an unscoped query is a structural defect.
func (r *SQLDataPointRepository) guardTenant(operation, tenantID string) error {
	if tenantID == "" {
		r.logger.LogIsolationViolation(operation, "empty tenant id")
		return analytics.NewIsolationViolation(operation)
	}
	return nil
}

// Store appends one immutable data point.
func (r *SQLDataPointRepository) Store(point *analytics.AnalyticsDataPoint) error {
	if err := r.guardTenant("datapoint.store", point.TenantID); err != nil {
		return err
	}

	var dimensionsJSON sql.NullString
	if len(point.Dimensions) > 0 {
		raw, err := json.Marshal(point.Dimensions)
		if err != nil {
			return fmt.Errorf("failed to encode dimensions: %w", err)
		}
		dimensionsJSON = sql.NullString{String: string(raw), Valid: true}
	}

	const query = `
		INSERT INTO analytics_data_points (id, tenant_id, platform, metric_type, metric_name, value, dimensions, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing data point insert",
		"pointId", point.ID,
		"tenantId", point.TenantID,
		"platform", point.Platform,
		"metricName", point.MetricName)

	_, err := r.db.Exec(
		query,
		point.ID,
		point.TenantID,
		string(point.Platform),
		string(point.MetricType),
		point.MetricName,
		point.Value,
		dimensionsJSON,
		point.RecordedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		r.logger.Database().Error("Data point insert failed",
			"error", err.Error(),
			"pointId", point.ID,
			"tenantId", point.TenantID,
			"metricName", point.MetricName)
		return fmt.Errorf("failed to store data point: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, point.TenantID)
	}
	return nil
}

// FindForDay retrieves the raw points for one tenant/platform/day.
func (r *SQLDataPointRepository) FindForDay(tenantID string, platform analytics.Platform, day time.Time) ([]*analytics.AnalyticsDataPoint, error) {
	if err := r.guardTenant("datapoint.find_for_day", tenantID); err != nil {
		return nil, err
	}

	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	const query = `
		SELECT id, tenant_id, platform, metric_type, metric_name, value, dimensions, recorded_at
		FROM analytics_data_points
		WHERE tenant_id = ? AND platform = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at`

	start := time.Now()
	rows, err := r.db.Query(query,
		tenantID,
		string(platform),
		dayStart.Format(timestampLayout),
		dayEnd.Format(timestampLayout),
	)
	if err != nil {
		r.logger.Database().Error("Failed to query data points for day",
			"error", err.Error(), "tenantId", tenantID, "platform", platform, "day", dayStart)
		return nil, fmt.Errorf("failed to query data points: %w", err)
	}
	defer rows.Close()

	points, err := r.scanPoints(rows)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Data points loaded for day",
		"tenantId", tenantID, "platform", platform, "day", dayStart, "count", len(points), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, tenantID)
	}
	return points, nil
}

// CountForTenant returns the tenant's fact row count.
func (r *SQLDataPointRepository) CountForTenant(tenantID string) (int, error) {
	if err := r.guardTenant("datapoint.count", tenantID); err != nil {
		return 0, err
	}

	const query = `SELECT COUNT(*) FROM analytics_data_points WHERE tenant_id = ?`

	var count int
	if err := r.db.QueryRow(query, tenantID).Scan(&count); err != nil {
		r.logger.Database().Error("Failed to count data points", "error", err.Error(), "tenantId", tenantID)
		return 0, fmt.Errorf("failed to count data points: %w", err)
	}
	return count, nil
}

// ActivePlatforms returns the platforms with data in range for the tenant.
func (r *SQLDataPointRepository) ActivePlatforms(tenantID string, tr analytics.TimeRange) ([]analytics.Platform, error) {
	if err := r.guardTenant("datapoint.active_platforms", tenantID); err != nil {
		return nil, err
	}

	const query = `
		SELECT DISTINCT platform
		FROM analytics_data_points
		WHERE tenant_id = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY platform`

	rows, err := r.db.Query(query,
		tenantID,
		tr.Start.UTC().Format(timestampLayout),
		tr.End.UTC().Format(timestampLayout),
	)
	if err != nil {
		r.logger.Database().Error("Failed to query active platforms", "error", err.Error(), "tenantId", tenantID)
		return nil, fmt.Errorf("failed to query active platforms: %w", err)
	}
	defer rows.Close()

	var platforms []analytics.Platform
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			r.logger.Database().Error("Failed to scan platform row", "error", err.Error())
			continue
		}
		platforms = append(platforms, analytics.Platform(p))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return platforms, nil
}

// DeleteOlderThan removes facts past the retention horizon for one tenant.
func (r *SQLDataPointRepository) DeleteOlderThan(tenantID string, cutoff time.Time) (int64, error) {
	if err := r.guardTenant("datapoint.delete_older_than", tenantID); err != nil {
		return 0, err
	}

	const query = `DELETE FROM analytics_data_points WHERE tenant_id = ? AND recorded_at < ?`

	start := time.Now()
	result, err := r.db.Exec(query, tenantID, cutoff.UTC().Format(timestampLayout))
	if err != nil {
		r.logger.Database().Error("Retention delete failed", "error", err.Error(), "tenantId", tenantID)
		return 0, fmt.Errorf("failed to delete expired data points: %w", err)
	}

	deleted, _ := result.RowsAffected()
	r.logger.Database().Info("Retention delete completed",
		"tenantId", tenantID, "cutoff", cutoff, "deleted", deleted, "duration", time.Since(start))
	return deleted, nil
}

func (r *SQLDataPointRepository) scanPoints(rows *sql.Rows) ([]*analytics.AnalyticsDataPoint, error) {
	var points []*analytics.AnalyticsDataPoint
	for rows.Next() {
		var point analytics.AnalyticsDataPoint
		var platform, metricType, recordedAtStr string
		var dimensionsJSON sql.NullString

		err := rows.Scan(
			&point.ID,
			&point.TenantID,
			&platform,
			&metricType,
			&point.MetricName,
			&point.Value,
			&dimensionsJSON,
			&recordedAtStr,
		)
		if err != nil {
			r.logger.Database().Error("Failed to scan data point row", "error", err.Error())
			continue
		}

		point.Platform = analytics.Platform(platform)
		point.MetricType = analytics.MetricType(metricType)

		point.RecordedAt, err = parseTimestamp(recordedAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse data point timestamp", "error", err.Error(), "timestamp", recordedAtStr)
			continue
		}

		if dimensionsJSON.Valid && dimensionsJSON.String != "" {
			if err := json.Unmarshal([]byte(dimensionsJSON.String), &point.Dimensions); err != nil {
				r.logger.Database().Error("Failed to decode dimensions", "error", err.Error(), "pointId", point.ID)
			}
		}

		points = append(points, &point)
	}
	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for data points", "error", err.Error())
		return nil, err
	}
	return points, nil
}

// parseTimestamp handles multiple timestamp formats
func parseTimestamp(timestampStr string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, timestampStr); err == nil {
		return t, nil
	}
	if t, err := time.Parse(timestampLayout, timestampStr); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", timestampStr); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp format: %s", timestampStr)
}
