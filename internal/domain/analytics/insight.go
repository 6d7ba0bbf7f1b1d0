package analytics

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

// InsightType names the pattern detector that produced an insight.
type InsightType string

const (
	InsightTypeTrend      InsightType = "trend"
	InsightTypeDivergence InsightType = "divergence"
	InsightTypeAnomaly    InsightType = "anomaly"
)

// Priority buckets an insight by actionability.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// priorityRank orders priorities for sorting, highest first.
var priorityRank = map[Priority]int{
	PriorityCritical: 3,
	PriorityHigh:     2,
	PriorityMedium:   1,
	PriorityLow:      0,
}

// PriorityFromScores maps (impact, confidence) to a priority bucket.
// The mapping is pure and reproducible: critical at product >= 0.7,
// high >= 0.4, medium >= 0.15, otherwise low.
func PriorityFromScores(impactScore, confidence float64) Priority {
	product := impactScore * confidence
	switch {
	case product >= 0.7:
		return PriorityCritical
	case product >= 0.4:
		return PriorityHigh
	case product >= 0.15:
		return PriorityMedium
	}
	return PriorityLow
}

// CrossPlatformInsight is a generated, ranked observation over a tenant's
// aggregated metrics. Insights are superseded, not mutated: each generator
// run writes a new generation and the "current" view returns the latest.
type CrossPlatformInsight struct {
	InsightID          string      `json:"insightId"`
	TenantID           string      `json:"tenantId"`
	GenerationID       string      `json:"generationId"`
	InsightType        InsightType `json:"insightType"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	ImpactScore        float64     `json:"impactScore"`
	Confidence         float64     `json:"confidence"`
	AffectedPlatforms  []Platform  `json:"affectedPlatforms"`
	RecommendedActions []string    `json:"recommendedActions"`
	Priority           Priority    `json:"priority"`
	GeneratedAt        time.Time   `json:"generatedAt"`
}

// StableInsightID derives a deterministic identifier from the pattern
// characteristics, so re-running generation on unchanged data reproduces
// the same IDs.
func StableInsightID(tenantID string, it InsightType, metricName string, platforms []Platform, periodStart, periodEnd string) string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	sort.Strings(names)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s", tenantID, it, metricName, strings.Join(names, ","), periodStart, periodEnd)
	return fmt.Sprintf("ins_%016x", h.Sum64())
}

// SortInsights orders insights by priority descending, then impact score
// descending, so the most actionable item is always first. Ties fall back
// to insight ID for a stable order.
func SortInsights(insights []*CrossPlatformInsight) {
	sort.SliceStable(insights, func(i, j int) bool {
		ri, rj := priorityRank[insights[i].Priority], priorityRank[insights[j].Priority]
		if ri != rj {
			return ri > rj
		}
		if insights[i].ImpactScore != insights[j].ImpactScore {
			return insights[i].ImpactScore > insights[j].ImpactScore
		}
		return insights[i].InsightID < insights[j].InsightID
	})
}
