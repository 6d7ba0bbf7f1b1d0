// Package database provides tenant schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the database schema for a new tenant.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS analytics_data_points (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		value REAL NOT NULL,
		dimensions TEXT,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_metrics (
		tenant_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		period_date TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		aggregate_value REAL NOT NULL,
		sample_count INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, platform, metric_name, period_date)
	)`,
	`CREATE TABLE IF NOT EXISTS insights (
		insight_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		generation_id TEXT NOT NULL,
		insight_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		impact_score REAL NOT NULL,
		confidence REAL NOT NULL,
		priority TEXT NOT NULL,
		affected_platforms TEXT NOT NULL,
		recommended_actions TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, generation_id, insight_id)
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_data_points_tenant_platform_time
		ON analytics_data_points (tenant_id, platform, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_data_points_tenant_time
		ON analytics_data_points (tenant_id, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_metrics_tenant_period
		ON daily_metrics (tenant_id, period_date)`,
	`CREATE INDEX IF NOT EXISTS idx_insights_tenant_generated
		ON insights (tenant_id, generated_at)`,
}

// CreateSchema executes all necessary queries to build the tenant's database tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
