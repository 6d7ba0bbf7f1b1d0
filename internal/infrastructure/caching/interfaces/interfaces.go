// Package interfaces defines cache operation contracts for multi-tenant analytics caching.
package interfaces

import (
	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/types"
)

// AnalyticsCache defines operations for computed analytics caching
type AnalyticsCache interface {
	GetDashboard(tenantID, timeframe string) (*analytics.Dashboard, bool)
	SetDashboard(tenantID, timeframe string, dashboard *analytics.Dashboard)
	GetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string) (*analytics.PlatformMetrics, bool)
	SetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string, metrics *analytics.PlatformMetrics)
	GetInsights(tenantID string) (*types.InsightBin, bool)
	SetInsights(tenantID, generationID string, insights []*analytics.CrossPlatformInsight)
	InvalidateAnalytics(tenantID string)
}

// Cache combines all cache contracts plus tenant lifecycle operations
type Cache interface {
	AnalyticsCache

	InitializeTenant(tenantID string)
	RemoveTenant(tenantID string)
	PurgeExpiredBins(tenantID string) int
	GetAnalyticsSummary(tenantID string) map[string]any
}
