package analytics

import (
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInsight(id string, priority analytics.Priority, impact float64) *analytics.CrossPlatformInsight {
	return &analytics.CrossPlatformInsight{
		InsightID:          id,
		TenantID:           "acme",
		InsightType:        analytics.InsightTypeTrend,
		Title:              "Revenue trending up",
		Description:        "Revenue rose over the analysis window",
		ImpactScore:        impact,
		Confidence:         0.8,
		Priority:           priority,
		AffectedPlatforms:  []analytics.Platform{analytics.PlatformBizoholic},
		RecommendedActions: []string{"Increase budget on the rising channel"},
		GeneratedAt:        time.Date(2026, 8, 11, 4, 0, 0, 0, time.UTC),
	}
}

func TestInsightLatestGenerationWins(t *testing.T) {
	repo := NewSQLInsightRepository(testDB(t), testLogger(t))

	// ULID ordering means the second generation id sorts after the first
	require.NoError(t, repo.StoreGeneration("acme", "01J0000000000000000000AAAA", []*analytics.CrossPlatformInsight{
		testInsight("ins_old_1", analytics.PriorityHigh, 0.6),
		testInsight("ins_old_2", analytics.PriorityLow, 0.1),
	}))
	require.NoError(t, repo.StoreGeneration("acme", "01J0000000000000000000BBBB", []*analytics.CrossPlatformInsight{
		testInsight("ins_new_1", analytics.PriorityMedium, 0.3),
	}))

	current, err := repo.FindCurrent("acme")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "ins_new_1", current[0].InsightID)
	assert.Equal(t, "01J0000000000000000000BBBB", current[0].GenerationID)
}

func TestInsightCurrentIsRanked(t *testing.T) {
	repo := NewSQLInsightRepository(testDB(t), testLogger(t))

	require.NoError(t, repo.StoreGeneration("acme", "01J0000000000000000000AAAA", []*analytics.CrossPlatformInsight{
		testInsight("ins_medium", analytics.PriorityMedium, 0.9),
		testInsight("ins_critical", analytics.PriorityCritical, 0.4),
		testInsight("ins_high", analytics.PriorityHigh, 0.7),
	}))

	current, err := repo.FindCurrent("acme")
	require.NoError(t, err)
	require.Len(t, current, 3)
	assert.Equal(t, "ins_critical", current[0].InsightID)
	assert.Equal(t, "ins_high", current[1].InsightID)
	assert.Equal(t, "ins_medium", current[2].InsightID)
}

func TestInsightRoundTripFields(t *testing.T) {
	repo := NewSQLInsightRepository(testDB(t), testLogger(t))

	stored := testInsight("ins_rt", analytics.PriorityHigh, 0.55)
	stored.AffectedPlatforms = []analytics.Platform{analytics.PlatformBizoholic, analytics.PlatformQuanttrade}
	stored.RecommendedActions = []string{"Review campaign pacing", "Compare conversion funnels"}
	require.NoError(t, repo.StoreGeneration("acme", "01J0000000000000000000AAAA", []*analytics.CrossPlatformInsight{stored}))

	current, err := repo.FindCurrent("acme")
	require.NoError(t, err)
	require.Len(t, current, 1)

	got := current[0]
	assert.Equal(t, stored.InsightType, got.InsightType)
	assert.Equal(t, stored.AffectedPlatforms, got.AffectedPlatforms)
	assert.Equal(t, stored.RecommendedActions, got.RecommendedActions)
	assert.Equal(t, stored.ImpactScore, got.ImpactScore)
	assert.True(t, stored.GeneratedAt.Equal(got.GeneratedAt))
}

func TestInsightTenantIsolation(t *testing.T) {
	repo := NewSQLInsightRepository(testDB(t), testLogger(t))

	require.NoError(t, repo.StoreGeneration("acme", "01J0000000000000000000AAAA", []*analytics.CrossPlatformInsight{
		testInsight("ins_acme", analytics.PriorityHigh, 0.6),
	}))

	current, err := repo.FindCurrent("other")
	require.NoError(t, err)
	assert.Empty(t, current)

	_, err = repo.FindCurrent("")
	require.Error(t, err)
	assert.IsType(t, &analytics.IsolationViolation{}, err)
}
