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

// SQLInsightRepository persists insight generations. Generations supersede
// each other; old rows are retained for audit and only the latest
// generation is served as "current".
type SQLInsightRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLInsightRepository creates a new instance of the repository.
func NewSQLInsightRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLInsightRepository {
	return &SQLInsightRepository{
		db:     db,
		logger: logger,
	}
}

var _ analytics.InsightRepository = (*SQLInsightRepository)(nil)

func (r *SQLInsightRepository) guardTenant(operation, tenantID string) error {
	if tenantID == "" {
		r.logger.LogIsolationViolation(operation, "empty tenant id")
		return analytics.NewIsolationViolation(operation)
	}
	return nil
}

// StoreGeneration persists one generator run's output in a transaction.
func (r *SQLInsightRepository) StoreGeneration(tenantID, generationID string, insights []*analytics.CrossPlatformInsight) error {
	if err := r.guardTenant("insight.store_generation", tenantID); err != nil {
		return err
	}

	const query = `
		INSERT INTO insights (insight_id, tenant_id, generation_id, insight_type, title, description,
			impact_score, confidence, priority, affected_platforms, recommended_actions, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin insight transaction: %w", err)
	}
	defer tx.Rollback()

	for _, insight := range insights {
		platformsJSON, err := json.Marshal(insight.AffectedPlatforms)
		if err != nil {
			return fmt.Errorf("failed to encode affected platforms: %w", err)
		}
		actionsJSON, err := json.Marshal(insight.RecommendedActions)
		if err != nil {
			return fmt.Errorf("failed to encode recommended actions: %w", err)
		}

		_, err = tx.Exec(query,
			insight.InsightID,
			tenantID,
			generationID,
			string(insight.InsightType),
			insight.Title,
			insight.Description,
			insight.ImpactScore,
			insight.Confidence,
			string(insight.Priority),
			string(platformsJSON),
			string(actionsJSON),
			insight.GeneratedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			r.logger.Database().Error("Insight insert failed",
				"error", err.Error(), "tenantId", tenantID, "insightId", insight.InsightID)
			return fmt.Errorf("failed to store insight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insight generation: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Insight generation stored",
		"tenantId", tenantID, "generationId", generationID, "count", len(insights), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, tenantID)
	}
	return nil
}

// FindCurrent returns the latest generation's insights, ranked.
func (r *SQLInsightRepository) FindCurrent(tenantID string) ([]*analytics.CrossPlatformInsight, error) {
	if err := r.guardTenant("insight.find_current", tenantID); err != nil {
		return nil, err
	}

	// Generation IDs are ULIDs, so lexicographic max is the newest run.
	const query = `
		SELECT insight_id, tenant_id, generation_id, insight_type, title, description,
			impact_score, confidence, priority, affected_platforms, recommended_actions, generated_at
		FROM insights
		WHERE tenant_id = ?
			AND generation_id = (SELECT MAX(generation_id) FROM insights WHERE tenant_id = ?)`

	rows, err := r.db.Query(query, tenantID, tenantID)
	if err != nil {
		r.logger.Database().Error("Failed to query current insights", "error", err.Error(), "tenantId", tenantID)
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []*analytics.CrossPlatformInsight
	for rows.Next() {
		insight, err := r.scanInsight(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan insight row", "error", err.Error())
			continue
		}
		insights = append(insights, insight)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	analytics.SortInsights(insights)
	return insights, nil
}

func (r *SQLInsightRepository) scanInsight(rows *sql.Rows) (*analytics.CrossPlatformInsight, error) {
	var insight analytics.CrossPlatformInsight
	var insightType, priority, platformsJSON, actionsJSON, generatedAtStr string

	err := rows.Scan(
		&insight.InsightID,
		&insight.TenantID,
		&insight.GenerationID,
		&insightType,
		&insight.Title,
		&insight.Description,
		&insight.ImpactScore,
		&insight.Confidence,
		&priority,
		&platformsJSON,
		&actionsJSON,
		&generatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	insight.InsightType = analytics.InsightType(insightType)
	insight.Priority = analytics.Priority(priority)

	if err := json.Unmarshal([]byte(platformsJSON), &insight.AffectedPlatforms); err != nil {
		return nil, fmt.Errorf("failed to decode affected platforms: %w", err)
	}
	if err := json.Unmarshal([]byte(actionsJSON), &insight.RecommendedActions); err != nil {
		return nil, fmt.Errorf("failed to decode recommended actions: %w", err)
	}

	insight.GeneratedAt, err = parseTimestamp(generatedAtStr)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}
